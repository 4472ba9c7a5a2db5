package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fieldops/visits-service/internal/http/middleware"
	"github.com/fieldops/visits-service/internal/model"
	"github.com/fieldops/visits-service/internal/repository"
	"github.com/fieldops/visits-service/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	visits    *service.VisitService
	generator *service.Generator
	folders   *service.FolderService
	exports   *service.ExportService
	clients   service.ClientStore
	log       zerolog.Logger
	now       func() time.Time
}

func NewHandler(
	contracts *service.ContractService,
	visits *service.VisitService,
	generator *service.Generator,
	folders *service.FolderService,
	exports *service.ExportService,
	clients service.ClientStore,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		visits:    visits,
		generator: generator,
		folders:   folders,
		exports:   exports,
		clients:   clients,
		log:       log,
		now:       time.Now,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/clients", h.createClient)
	protected.GET("/clients", h.listClients)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.POST("/contracts/:id/activate", h.activateContract)
	protected.POST("/contracts/:id/close", h.closeContract)
	protected.POST("/contracts/:id/generate", h.generateVisits)
	protected.POST("/contracts/:id/extra-visits", h.addExtraVisits)
	protected.GET("/contracts/:id/visits", h.listContractVisits)
	protected.POST("/contracts/:id/export", h.exportSchedule)

	protected.POST("/visits", h.createAdHocVisit)
	protected.GET("/visits/:id", h.getVisit)
	protected.PATCH("/visits/:id", h.updateVisit)
	protected.POST("/visits/:id/done", h.markVisitDone)
	protected.POST("/visits/:id/cancel", h.cancelVisit)
	protected.POST("/visits/:id/signature", h.completeSignature)
	protected.GET("/visits/:id/report", h.downloadReport)

	protected.GET("/folders", h.listFolders)
	protected.GET("/folders/:id", h.getFolder)
	protected.GET("/documents/:id/download", h.downloadDocument)
}

type createClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (h *Handler) createClient(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.CreateClient(c.Request.Context(), model.Client{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clientResponse(*client))
}

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.ListClients(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		out = append(out, clientResponse(client))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

type createContractRequest struct {
	ClientID       string `json:"client_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	VisitsPerMonth int    `json:"visits_per_month" binding:"required"`
}

func (h *Handler) createContract(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), service.CreateContractInput{
		ClientID:       clientID,
		Name:           req.Name,
		StartDate:      start,
		EndDate:        end,
		VisitsPerMonth: req.VisitsPerMonth,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contractResponse(*contract))
}

func (h *Handler) listContracts(c *gin.Context) {
	contracts, err := h.contracts.ListContracts(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(contracts))
	for _, contract := range contracts {
		out = append(out, contractResponse(contract))
	}
	c.JSON(http.StatusOK, gin.H{"contracts": out})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	summary, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	body := contractResponse(summary.Contract)
	body["generated_visits"] = summary.GeneratedCount
	body["expected_total_visits"] = summary.ExpectedTotal
	c.JSON(http.StatusOK, body)
}

func (h *Handler) activateContract(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.contracts.Activate(c.Request.Context(), id, h.now())
	if err != nil {
		h.handleError(c, err)
		return
	}
	body := contractResponse(*result.Contract)
	body["visits_created"] = result.VisitsCreated
	c.JSON(http.StatusOK, body)
}

func (h *Handler) closeContract(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	contract, err := h.contracts.Close(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponse(*contract))
}

func (h *Handler) generateVisits(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	created, err := h.generator.Generate(c.Request.Context(), id, model.MonthOf(h.now()))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visits_created": len(created),
		"visits":         visitResponses(created),
	})
}

type addExtraVisitsRequest struct {
	Month  string `json:"month" binding:"required"`
	Count  int    `json:"count" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) addExtraVisits(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req addExtraVisitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	month, err := model.ParseMonth(strings.TrimSpace(req.Month))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}
	created, err := h.generator.AddExtra(c.Request.Context(), service.AddExtraInput{
		ContractID: id,
		Month:      month,
		Count:      req.Count,
		Reason:     req.Reason,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"visits_created": len(created),
		"visits":         visitResponses(created),
	})
}

func (h *Handler) listContractVisits(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	visits, err := h.visits.ListContractVisits(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visitResponses(visits)})
}

type exportScheduleRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) exportSchedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req exportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var from, to model.Month
	var err error
	if strings.TrimSpace(req.From) != "" {
		if from, err = model.ParseMonth(strings.TrimSpace(req.From)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from, expected YYYY-MM"})
			return
		}
	}
	if strings.TrimSpace(req.To) != "" {
		if to, err = model.ParseMonth(strings.TrimSpace(req.To)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to, expected YYYY-MM"})
			return
		}
	}

	result, err := h.exports.ExportSchedule(c.Request.Context(), id, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

type createAdHocVisitRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	VisitDate    string `json:"visit_date"`
	ProblemType  string `json:"problem_type"`
	EngineerName string `json:"engineer_name"`
}

func (h *Handler) createAdHocVisit(c *gin.Context) {
	var req createAdHocVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	var visitDate time.Time
	if strings.TrimSpace(req.VisitDate) != "" {
		if visitDate, err = parseDate(req.VisitDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visit_date"})
			return
		}
	}
	visit, err := h.visits.CreateAdHocVisit(c.Request.Context(), service.CreateAdHocVisitInput{
		ClientID:     clientID,
		VisitDate:    visitDate,
		ProblemType:  req.ProblemType,
		EngineerName: req.EngineerName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, visitResponse(*visit))
}

func (h *Handler) getVisit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	visit, err := h.visits.GetVisit(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visitResponse(*visit))
}

type updateVisitRequest struct {
	EngineerName     *string `json:"engineer_name"`
	ProblemType      *string `json:"problem_type"`
	EngineerComments *string `json:"engineer_comments"`
	Address          *string `json:"address"`
	VisitDate        *string `json:"visit_date"`
}

func (h *Handler) updateVisit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req updateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update := repository.VisitUpdate{
		EngineerName:     req.EngineerName,
		ProblemType:      req.ProblemType,
		EngineerComments: req.EngineerComments,
		Address:          req.Address,
	}
	if req.VisitDate != nil {
		date, err := parseDate(*req.VisitDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visit_date"})
			return
		}
		update.VisitDate = &date
	}
	visit, err := h.visits.UpdateVisit(c.Request.Context(), id, update)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visitResponse(*visit))
}

func (h *Handler) markVisitDone(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	visit, err := h.visits.MarkDone(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visitResponse(*visit))
}

func (h *Handler) cancelVisit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	visit, err := h.visits.Cancel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visitResponse(*visit))
}

type completeSignatureRequest struct {
	FileName string `json:"file_name"`
	Content  []byte `json:"content" binding:"required"`
}

func (h *Handler) completeSignature(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req completeSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	visit, err := h.visits.CompleteSignature(c.Request.Context(), service.SignatureInput{
		VisitID:  id,
		FileName: req.FileName,
		Content:  req.Content,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visitResponse(*visit))
}

func (h *Handler) downloadReport(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	doc, err := h.visits.GetReport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+doc.Name+"\"")
	c.Data(http.StatusOK, doc.MimeType, doc.Content)
}

func (h *Handler) listFolders(c *gin.Context) {
	folders, err := h.folders.ListRoots(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(folders))
	for _, folder := range folders {
		out = append(out, folderResponse(folder))
	}
	c.JSON(http.StatusOK, gin.H{"folders": out})
}

func (h *Handler) getFolder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tree, err := h.folders.GetTree(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	body := folderResponse(tree.Folder)
	children := make([]gin.H, 0, len(tree.Children))
	for _, child := range tree.Children {
		children = append(children, folderResponse(child))
	}
	documents := make([]gin.H, 0, len(tree.Documents))
	for _, doc := range tree.Documents {
		documents = append(documents, gin.H{
			"id":         doc.ID,
			"name":       doc.Name,
			"mime_type":  doc.MimeType,
			"visit_id":   doc.VisitID,
			"created_at": doc.CreatedAt,
		})
	}
	body["children"] = children
	body["documents"] = documents
	c.JSON(http.StatusOK, body)
}

func (h *Handler) downloadDocument(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	doc, err := h.folders.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+doc.Name+"\"")
	c.Data(http.StatusOK, doc.MimeType, doc.Content)
}

func (h *Handler) requireManager(c *gin.Context) bool {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return false
	}
	if !principal.IsManager() {
		c.JSON(http.StatusForbidden, gin.H{"error": "manager role required"})
		return false
	}
	return true
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOutOfRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func clientResponse(client model.Client) gin.H {
	return gin.H{
		"id":      client.ID,
		"name":    client.Name,
		"address": client.Address,
		"email":   client.Email,
		"phone":   client.Phone,
	}
}

func contractResponse(contract model.Contract) gin.H {
	return gin.H{
		"id":               contract.ID,
		"client_id":        contract.ClientID,
		"client_name":      contract.Client.Name,
		"name":             contract.Name,
		"start_date":       contract.StartDate.Format("2006-01-02"),
		"end_date":         contract.EndDate.Format("2006-01-02"),
		"visits_per_month": contract.VisitsPerMonth,
		"state":            contract.State,
		"root_folder_id":   contract.RootFolderID,
	}
}

func visitResponse(visit model.Visit) gin.H {
	return gin.H{
		"id":                 visit.ID,
		"reference":          visit.Reference,
		"contract_id":        visit.ContractID,
		"client_id":          visit.ClientID,
		"folder_id":          visit.FolderID,
		"month":              visit.VisitMonth.String(),
		"sequence_no":        visit.SequenceNo,
		"visit_date":         visit.VisitDate.Format("2006-01-02"),
		"state":              visit.State,
		"kind":               visit.Kind,
		"engineer_name":      visit.EngineerName,
		"problem_type":       visit.ProblemType,
		"engineer_comments":  visit.EngineerComments,
		"address":            visit.Address,
		"extra_reason":       visit.ExtraReason,
		"report_document_id": visit.ReportDocumentID,
	}
}

func visitResponses(visits []model.Visit) []gin.H {
	out := make([]gin.H, 0, len(visits))
	for _, visit := range visits {
		out = append(out, visitResponse(visit))
	}
	return out
}

func folderResponse(folder model.Folder) gin.H {
	body := gin.H{
		"id":             folder.ID,
		"name":           folder.Name,
		"parent_id":      folder.ParentID,
		"client_id":      folder.ClientID,
		"document_count": folder.DocumentCount,
	}
	if folder.FolderMonth != nil {
		body["month"] = folder.FolderMonth.String()
	}
	return body
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
