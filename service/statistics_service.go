package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/metrics"
	"loan-advisor/repository"
)

const statsCachePrefix = "stats:"

var numberPrinter = message.NewPrinter(language.English)

// RecordProvider is the read side of the dataset store.
type RecordProvider interface {
	Records() ([]domain.LoanRecord, error)
	Fingerprint() string
}

// StatisticsService computes approval statistics over the loaded dataset and
// memoises them per dataset fingerprint.
type StatisticsService struct {
	dataset RecordProvider
	cache   repository.CacheRepository
	ttl     time.Duration
	logger  logger.Logger
}

func NewStatisticsService(dataset RecordProvider, cache repository.CacheRepository, ttl time.Duration, log logger.Logger) *StatisticsService {
	return &StatisticsService{
		dataset: dataset,
		cache:   cache,
		ttl:     ttl,
		logger:  log,
	}
}

// Stats returns the statistics for the current snapshot.
func (s *StatisticsService) Stats(ctx context.Context) (domain.ApprovalStats, error) {
	records, err := s.dataset.Records()
	if err != nil {
		return domain.ApprovalStats{}, err
	}

	key := statsCachePrefix + s.dataset.Fingerprint()
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached domain.ApprovalStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				metrics.StatsCache.WithLabelValues("hit").Inc()
				return cached, nil
			}
			s.logger.Warn("Discarding unreadable stats cache entry", map[string]interface{}{"key": key})
		}
		metrics.StatsCache.WithLabelValues("miss").Inc()
	}

	stats, err := ComputeStats(records)
	if err != nil {
		return domain.ApprovalStats{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				s.logger.Warn("Failed to cache stats", map[string]interface{}{"key": key, "error": err})
			}
		}
	}

	return stats, nil
}

// DataContext renders the statistics as the grounding text for the narrative
// engine. It never fails: without data it returns a fixed notice.
func (s *StatisticsService) DataContext(ctx context.Context) string {
	stats, err := s.Stats(ctx)
	if err != nil {
		s.logger.Warn("Data context unavailable", map[string]interface{}{"error": err})
		return DataContextUnavailable
	}
	return FormatDataContext(stats)
}

// ComputeStats aggregates the records by outcome. The mean of an empty group
// is reported as 0; use HasApproved and HasRejected to tell it apart.
func ComputeStats(records []domain.LoanRecord) (domain.ApprovalStats, error) {
	if len(records) == 0 {
		return domain.ApprovalStats{}, fmt.Errorf("%w: no loan records", domain.ErrEmptyDataset)
	}

	var (
		stats                          domain.ApprovalStats
		incomeApproved, incomeRejected float64
		creditApproved, creditRejected float64
	)

	for _, r := range records {
		switch r.Approval {
		case domain.Approved:
			stats.Approved++
			incomeApproved += r.Income
			creditApproved += float64(r.CreditScore)
		default:
			stats.Rejected++
			incomeRejected += r.Income
			creditRejected += float64(r.CreditScore)
		}
	}

	stats.TotalApplications = len(records)
	stats.ApprovalRate = float64(stats.Approved) / float64(stats.TotalApplications) * 100
	stats.AvgIncomeApproved = mean(incomeApproved, stats.Approved)
	stats.AvgCreditScoreApproved = mean(creditApproved, stats.Approved)
	stats.AvgIncomeRejected = mean(incomeRejected, stats.Rejected)
	stats.AvgCreditScoreRejected = mean(creditRejected, stats.Rejected)

	return stats, nil
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FormatDataContext renders stats as a plain-text summary with a fixed set of
// key patterns appended.
func FormatDataContext(stats domain.ApprovalStats) string {
	var b strings.Builder

	b.WriteString("LOAN APPROVAL DATASET INSIGHTS:\n")
	b.WriteString(numberPrinter.Sprintf("- Total Applications: %d\n", stats.TotalApplications))
	b.WriteString(numberPrinter.Sprintf("- Approved: %d (%.1f%%)\n", stats.Approved, stats.ApprovalRate))
	b.WriteString(numberPrinter.Sprintf("- Rejected: %d\n", stats.Rejected))
	b.WriteString("- Average Income (Approved): " + formatAmount(stats.AvgIncomeApproved, stats.HasApproved()) + "\n")
	b.WriteString("- Average Income (Rejected): " + formatAmount(stats.AvgIncomeRejected, stats.HasRejected()) + "\n")
	b.WriteString("- Average Credit Score (Approved): " + formatScore(stats.AvgCreditScoreApproved, stats.HasApproved()) + "\n")
	b.WriteString("- Average Credit Score (Rejected): " + formatScore(stats.AvgCreditScoreRejected, stats.HasRejected()) + "\n")
	b.WriteString("\nKEY PATTERNS:\n")
	b.WriteString("- Higher income and credit scores correlate with approval\n")
	b.WriteString("- Lower DTI ratios improve approval chances\n")
	b.WriteString("- Employment status significantly impacts decisions\n")
	b.WriteString("- Business and education loans have varying approval rates\n")

	return b.String()
}

func formatAmount(v float64, present bool) string {
	if !present {
		return "n/a"
	}
	return "$" + numberPrinter.Sprintf("%.2f", v)
}

func formatScore(v float64, present bool) string {
	if !present {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}
