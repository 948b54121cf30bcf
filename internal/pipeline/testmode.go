package pipeline

import (
	"time"

	"github.com/finsight-dev/finsight/internal/domain"
)

// SampleResultBundle returns the fixed bundle produced by test-mode runs. It
// always holds exactly two transactions so smoke tests and demo environments
// have a stable, non-trivial payload without touching a real statement.
func SampleResultBundle() *domain.ResultBundle {
	opening, closing := 42000.00, 38500.00
	credits, debits := 30000.00, 33500.00
	avgDaily := 40000.50
	salaryBalance, atmBalance := 72000.00, 38500.00

	return &domain.ResultBundle{
		Fields: &domain.AccountFields{
			BankName:            "State Bank of India",
			HolderName:          "Mr. HEMANT S SHARMA",
			AccountNumberMasked: "********9272",
			StatementPeriod:     "2025-09",
			AccountType:         "Savings",
			Currency:            "INR",
			Summary: &domain.Summary{
				OpeningBalance:      &opening,
				ClosingBalance:      &closing,
				TotalCredits:        &credits,
				TotalDebits:         &debits,
				AverageDailyBalance: &avgDaily,
			},
		},
		Transactions: []domain.Transaction{
			{
				Type:         "CREDIT",
				Amount:       30000.00,
				ID:           "SAMPLE001",
				Currency:     "INR",
				Date:         time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
				Description:  "SALARY CREDIT HDFC BANK",
				BalanceAfter: &salaryBalance,
				Category:     "CREDIT",
				Source:       domain.SourceModel,
			},
			{
				Type:         "DEBIT",
				Amount:       -33500.00,
				ID:           "SAMPLE002",
				Currency:     "INR",
				Date:         time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC),
				Description:  "ATM CASH WITHDRAWAL - SBI MUMBAI",
				BalanceAfter: &atmBalance,
				Category:     "ATM",
				Source:       domain.SourceModel,
			},
		},
		Insights: []domain.Insight{
			{Kind: domain.InsightSalary, Text: "Salary of ₹30,000 credited on 1 Sep.", Confidence: 0.9},
			{Kind: domain.InsightSpending, Text: "Single ATM withdrawal of ₹33,500 detected.", Confidence: 1},
			{Kind: domain.InsightAvgBalance, Text: "Closing balance stands at ₹38,500 with no overdrafts.", Confidence: 1},
			{Kind: domain.InsightTotals, Text: "Healthy cash flow pattern for this month.", Confidence: 0.8},
		},
		Quality: domain.QualityReport{
			Completeness: 1,
			Warnings:     []string{},
			Mode:         "test",
		},
	}
}
