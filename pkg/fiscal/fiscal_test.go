package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yurifrl/agencyfin/pkg/models"
)

var april = models.Month(time.April)

func client(start string) models.Client {
	return models.Client{Name: "Acme", Type: models.ClientRetainer, StartDate: start}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		start models.Month
		from  string
		to    string
	}{
		{"April start", 2024, april, "2024-04-01", "2025-03-31"},
		{"January start", 2024, models.Month(time.January), "2024-01-01", "2024-12-31"},
		{"March start crosses leap day", 2023, models.Month(time.March), "2023-03-01", "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := Window(tt.year, tt.start)
			assert.Equal(t, tt.from, from.Format("2006-01-02"))
			assert.Equal(t, tt.to, to.Format("2006-01-02"))
		})
	}
}

func TestIsInFiscalYear(t *testing.T) {
	tests := []struct {
		name  string
		start string
		in    bool
	}{
		{"First day", "2024-04-01", true},
		{"Last day", "2025-03-31", true},
		{"Day before", "2024-03-31", false},
		{"Day after", "2025-04-01", false},
		{"Previous year", "2023-01-01", false},
		{"Timestamp on last day", "2025-03-31T18:30:00Z", true},
		{"Missing date", "", false},
		{"Garbage date", "not a date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, IsInFiscalYear(client(tt.start), 2024, april))
		})
	}
}

func TestAllTimeConsistency(t *testing.T) {
	dates := []string{"2019-06-01", "2024-04-01", "2030-12-31", "", "31/31/2024", "01/02/2024"}

	for _, d := range dates {
		c := client(d)
		valid := IsValidForAllTime(c)
		for year := 2015; year <= 2035; year++ {
			if IsInFiscalYear(c, year, april) {
				assert.True(t, valid, "%q is in FY %d but not valid for all time", d, year)
			}
		}
		if !valid {
			for year := 2015; year <= 2035; year++ {
				assert.False(t, IsInFiscalYear(c, year, april), "%q has no valid date but is in FY %d", d, year)
			}
		}
	}
}

func TestSlashDatesAreDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"04/05/2024", time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)},
		{"13/04/2024", time.Date(2024, time.April, 13, 0, 0, 0, 0, time.UTC)},
		{"31/03/2025", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	// Month-first input with a day above 12 is rejected, not swapped.
	_, ok := ParseDate("04/13/2024")
	assert.False(t, ok)

	// 2 April, not 4 February: inside FY 2024 with an April start.
	assert.True(t, IsInFiscalYear(client("02/04/2024"), 2024, april))
	assert.False(t, IsInFiscalYear(client("02/04/2024"), 2023, april))
}

func TestClientBeforeFiscalYear(t *testing.T) {
	c := client("2023-01-01")

	assert.False(t, IsInFiscalYear(c, 2024, april))
	assert.True(t, IsValidForAllTime(c))
	assert.True(t, IsInFiscalYear(c, 2022, april))
}

func TestInvalidStartMonth(t *testing.T) {
	assert.False(t, IsInFiscalYear(client("2024-05-01"), 2024, models.Month(0)))
}

func TestYearOf(t *testing.T) {
	assert.Equal(t, 2023, YearOf(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), april))
	assert.Equal(t, 2024, YearOf(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), april))
}

func TestMonthOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"},
		MonthOrder(april))
	assert.Equal(t, "Jan", MonthOrder(models.Month(0))[0])
}

func TestAvailableYears(t *testing.T) {
	now := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []int{2026, 2025, 2024, 2023, 2022, 2021, 2018}, AvailableYears(now, []int{2018, 2024}))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "FY 2024-2025", Label(2024))
}
