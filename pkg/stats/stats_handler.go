package stats

import (
	"encoding/json"
	"net/http"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/rest"
)

type DailyStatsDTO struct {
	Date     string `json:"date"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

type BucketStatsDTO struct {
	BucketId int    `json:"bucketId"`
	Name     string `json:"name"`
	Spent    string `json:"spent"`
}

type UpcomingStatsDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	BucketId    int    `json:"bucketId,omitempty"`
}

type StatsSummaryDTO struct {
	StartDate     string             `json:"startDate"`
	EndDate       string             `json:"endDate"`
	TotalIncome   string             `json:"totalIncome"`
	TotalExpenses string             `json:"totalExpenses"`
	TotalInvested string             `json:"totalInvested"`
	Net           string             `json:"net"`
	Days          []DailyStatsDTO    `json:"days"`
	Buckets       []BucketStatsDTO   `json:"buckets"`
	Upcoming      []UpcomingStatsDTO `json:"upcoming"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	from := dates.Normalize(r.URL.Query().Get("fromDate"))
	if from.IsZero() {
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid fromDate format",
			Details: "fromDate must be in YYYY-MM-DD format",
		}); encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	to := dates.Normalize(r.URL.Query().Get("toDate"))
	if to.IsZero() {
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid toDate format",
			Details: "toDate must be in YYYY-MM-DD format",
		}); encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	stats, err := handler.statsService.GetStats(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(convertToJsonResponse(&stats)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertToJsonResponse(stats *StatsSummary) *StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		days = append(days, DailyStatsDTO{
			Date:     string(day.Date),
			Income:   day.Income.StringFixed(2),
			Expenses: day.Expenses.StringFixed(2),
			Net:      day.Net.StringFixed(2),
		})
	}

	buckets := make([]BucketStatsDTO, 0, len(stats.Buckets))
	for _, bucketStats := range stats.Buckets {
		buckets = append(buckets, BucketStatsDTO{
			BucketId: bucketStats.Bucket.ID,
			Name:     bucketStats.Bucket.Name,
			Spent:    bucketStats.Spent.StringFixed(2),
		})
	}

	upcoming := make([]UpcomingStatsDTO, 0, len(stats.Upcoming))
	for _, u := range stats.Upcoming {
		upcoming = append(upcoming, UpcomingStatsDTO{
			Date:        string(u.Date),
			Description: u.Description,
			Type:        u.Type,
			Amount:      u.Amount.StringFixed(2),
			BucketId:    u.BucketId,
		})
	}

	return &StatsSummaryDTO{
		StartDate:     string(stats.StartDate),
		EndDate:       string(stats.EndDate),
		TotalIncome:   stats.TotalIncome.StringFixed(2),
		TotalExpenses: stats.TotalExpenses.StringFixed(2),
		TotalInvested: stats.TotalInvested.StringFixed(2),
		Net:           stats.Net.StringFixed(2),
		Days:          days,
		Buckets:       buckets,
		Upcoming:      upcoming,
	}
}
