package recurring

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// timeNow is swapped in handler tests.
var timeNow = time.Now

type TemplateDTO struct {
	Id          int      `json:"id"`
	Type        string   `json:"type"`
	Amount      string   `json:"amount"`
	Description string   `json:"description"`
	BucketId    int      `json:"bucketId,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Frequency   string   `json:"frequency"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate,omitempty"`
	LastApplied string   `json:"lastApplied,omitempty"`
	Status      string   `json:"status,omitempty"`
}

type OccurrenceDTO struct {
	TemplateId  int    `json:"templateId"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	BucketId    int    `json:"bucketId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (handler *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new recurring template")
	w.Header().Set("Content-Type", "application/json")

	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tpl, err := dtoToTemplate(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(r.Context(), tpl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(templateToDTO(created, dates.None)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	templates, err := handler.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	today := dates.FromTime(timeNow())
	dtos := make([]TemplateDTO, 0, len(templates))
	for _, tpl := range templates {
		dtos = append(dtos, templateToDTO(tpl, today))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := pathId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tpl, err := handler.service.Get(r.Context(), id)
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "Recurring template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(templateToDTO(tpl, dates.FromTime(timeNow()))); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := pathId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id == 0 || dto.Id != id {
		http.Error(w, "Invalid template id in request body", http.StatusBadRequest)
		return
	}
	tpl, err := dtoToTemplate(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	propagation := Propagation{
		Mode:   PropagationMode(r.URL.Query().Get("propagation")),
		Cutoff: dates.Date(r.URL.Query().Get("cutoff")),
	}
	if propagation.Mode == "" {
		propagation.Mode = PropagateNone
	}

	updated, result, err := handler.service.Update(r.Context(), tpl, propagation)
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "Recurring template not found", http.StatusNotFound)
		return
	}
	// a zero template means the update itself failed; with a stored template
	// the error is a partial history rewrite and the counts must still reach
	// the client
	if err != nil && updated.Id == 0 {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := struct {
		Template    TemplateDTO `json:"template"`
		Propagation struct {
			Requested int `json:"requested"`
			Updated   int `json:"updated"`
		} `json:"propagation"`
		Error string `json:"error,omitempty"`
	}{Template: templateToDTO(updated, dates.None)}
	response.Propagation.Requested = result.Requested
	response.Propagation.Updated = result.Updated

	status := http.StatusOK
	if err != nil {
		response.Error = err.Error()
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	policy := DeletePolicy(r.URL.Query().Get("policy"))
	if policy == "" {
		policy = DeleteOrphan
	}

	ok, err := handler.service.Delete(r.Context(), id, policy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Recurring template not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	log.Debug("Reconciling recurring templates")
	w.Header().Set("Content-Type", "application/json")

	outcomes, err := handler.service.Reconcile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type outcomeDTO struct {
		TemplateId int    `json:"templateId"`
		Created    int    `json:"created"`
		Watermark  string `json:"watermark,omitempty"`
	}
	dtos := make([]outcomeDTO, 0, len(outcomes))
	for _, o := range outcomes {
		dtos = append(dtos, outcomeDTO{
			TemplateId: o.TemplateId,
			Created:    len(o.Created),
			Watermark:  string(o.Watermark),
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) Project(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from := dates.Normalize(r.URL.Query().Get("from"))
	to := dates.Normalize(r.URL.Query().Get("to"))
	if from.IsZero() || to.IsZero() {
		http.Error(w, "from and to query parameters are required", http.StatusBadRequest)
		return
	}

	occurrences, err := handler.service.Project(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, OccurrenceDTO{
			TemplateId:  o.Template.Id,
			Date:        string(o.Date),
			Type:        string(o.Template.Skeleton.Type),
			Amount:      o.Template.Skeleton.Amount.String(),
			Description: o.Template.Skeleton.Description,
			BucketId:    o.Template.Skeleton.BucketId,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func pathId(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func templateToDTO(tpl Template, today dates.Date) TemplateDTO {
	dto := TemplateDTO{
		Id:          tpl.Id,
		Type:        string(tpl.Skeleton.Type),
		Amount:      tpl.Skeleton.Amount.String(),
		Description: tpl.Skeleton.Description,
		BucketId:    tpl.Skeleton.BucketId,
		Tags:        tpl.Skeleton.Tags,
		Notes:       tpl.Skeleton.Notes,
		Frequency:   string(tpl.Frequency),
		StartDate:   string(tpl.StartDate),
		EndDate:     string(tpl.EndDate),
		LastApplied: string(tpl.LastApplied),
	}
	if !today.IsZero() {
		dto.Status = string(tpl.Status(today))
	}
	return dto
}

func dtoToTemplate(dto TemplateDTO) (Template, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Template{}, err
	}
	return Template{
		Id: dto.Id,
		Skeleton: Skeleton{
			Type:        transaction.Type(dto.Type),
			Amount:      amount,
			Description: dto.Description,
			BucketId:    dto.BucketId,
			Tags:        dto.Tags,
			Notes:       dto.Notes,
		},
		Frequency: Frequency(dto.Frequency),
		StartDate: dates.Normalize(dto.StartDate),
		EndDate:   dates.Normalize(dto.EndDate),
	}, nil
}
