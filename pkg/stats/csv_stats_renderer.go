package stats

import (
	"bytes"
	"encoding/csv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// StatsRenderer turns a summary into an export format.
type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes the daily series first, then the per-bucket breakdown,
// then the window totals, separated by blank rows.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	data := make([][]string, 0, len(stats.Days)+len(stats.Buckets)+8)

	data = append(data, []string{"Date", "Income", "Expenses", "Net"})
	for _, day := range stats.Days {
		data = append(data, []string{
			string(day.Date),
			amountToString(day.Income),
			amountToString(day.Expenses),
			amountToString(day.Net),
		})
	}

	data = append(data, []string{})
	data = append(data, []string{"Bucket", "Spent"})
	for _, bucketStats := range stats.Buckets {
		data = append(data, []string{bucketStats.Bucket.Name, amountToString(bucketStats.Spent)})
	}

	data = append(data, []string{})
	data = append(data, []string{"Total income", amountToString(stats.TotalIncome)})
	data = append(data, []string{"Total expenses", amountToString(stats.TotalExpenses)})
	data = append(data, []string{"Total invested", amountToString(stats.TotalInvested)})
	data = append(data, []string{"Net", amountToString(stats.Net)})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if len(row) == 0 {
			row = []string{""}
		}
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func amountToString(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
