package bucket

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type BucketDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type BucketHandler struct {
	bucketService BucketService
}

func NewBucketHandler(bucketService BucketService) *BucketHandler {
	return &BucketHandler{bucketService}
}

func (handler *BucketHandler) Register(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new bucket")
	w.Header().Set("Content-Type", "application/json")

	var bucketDTO BucketDTO
	if err := json.NewDecoder(r.Body).Decode(&bucketDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createdBucket, err := handler.bucketService.Create(r.Context(), dtoToBucket(bucketDTO))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(bucketToDTO(createdBucket)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BucketHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	buckets, err := handler.bucketService.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	bucketsDTO := make([]BucketDTO, 0, len(buckets))
	for _, b := range buckets {
		bucketsDTO = append(bucketsDTO, bucketToDTO(b))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(bucketsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BucketHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	bucketId, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var bucketDTO BucketDTO
	if err := json.NewDecoder(r.Body).Decode(&bucketDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if bucketDTO.ID == 0 || bucketDTO.ID != bucketId {
		http.Error(w, "Invalid bucket id in request body", http.StatusBadRequest)
		return
	}

	ok, err := handler.bucketService.Update(r.Context(), dtoToBucket(bucketDTO))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Bucket not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(bucketDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BucketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	bucketId, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := handler.bucketService.Delete(r.Context(), bucketId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Bucket not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *BucketHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bucketId, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var setPositionDTO struct {
		ID          int `json:"id"`
		PrecedingId int `json:"precedingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&setPositionDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := handler.bucketService.MoveAfter(r.Context(), bucketId, setPositionDTO.PrecedingId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Bucket not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func bucketToDTO(bucket Bucket) BucketDTO {
	return BucketDTO{
		ID:   bucket.ID,
		Name: bucket.Name,
		Icon: bucket.Icon,
	}
}

func dtoToBucket(dto BucketDTO) Bucket {
	return Bucket{
		ID:   dto.ID,
		Name: dto.Name,
		Icon: dto.Icon,
	}
}
