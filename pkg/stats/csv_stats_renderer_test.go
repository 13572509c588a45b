package stats

import (
	"testing"

	"github.com/moneta/moneta/pkg/bucket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCsvStatsRendererImpl_RenderStats(t1 *testing.T) {
	type args struct {
		stats StatsSummary
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "RenderStats with valid data",
			args: args{
				stats: StatsSummary{
					StartDate:     "2024-06-01",
					EndDate:       "2024-06-30",
					TotalIncome:   decimal.NewFromInt(3000),
					TotalExpenses: decimal.NewFromInt(200),
					TotalInvested: decimal.NewFromInt(500),
					Net:           decimal.NewFromInt(2300),
					Days: []DailyStats{
						{
							Date:   "2024-06-01",
							Income: decimal.NewFromInt(3000),
							Net:    decimal.NewFromInt(3000),
						},
						{
							Date:     "2024-06-03",
							Expenses: decimal.NewFromInt(120),
							Net:      decimal.NewFromInt(-120),
						},
					},
					Buckets: []BucketStats{
						{
							Bucket: bucket.Bucket{ID: 1, Name: "Groceries"},
							Spent:  decimal.NewFromInt(200),
						},
					},
				},
			},
			want: "Date,Income,Expenses,Net\n" +
				"2024-06-01,3000.00,0.00,3000.00\n" +
				"2024-06-03,0.00,120.00,-120.00\n" +
				"\n" +
				"Bucket,Spent\n" +
				"Groceries,200.00\n" +
				"\n" +
				"Total income,3000.00\n" +
				"Total expenses,200.00\n" +
				"Total invested,500.00\n" +
				"Net,2300.00\n",
		},
		{
			name: "RenderStats with no transactions",
			args: args{
				stats: StatsSummary{
					StartDate: "2024-06-01",
					EndDate:   "2024-06-30",
				},
			},
			want: "Date,Income,Expenses,Net\n" +
				"\n" +
				"Bucket,Spent\n" +
				"\n" +
				"Total income,0.00\n" +
				"Total expenses,0.00\n" +
				"Total invested,0.00\n" +
				"Net,0.00\n",
		},
	}
	for _, tt := range tests {
		t1.Run(tt.name, func(t1 *testing.T) {
			t := NewCsvStatsRenderer()
			got, err := t.RenderStats(tt.args.stats)
			assert.NoError(t1, err)
			assert.Equal(t1, tt.want, got)
		})
	}
}
