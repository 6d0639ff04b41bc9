package service

import (
	"fmt"
	"strings"

	"loan-advisor/domain"
)

type keywordRule struct {
	topic    string
	keywords []string
	reply    string
}

// Rules are checked in order against the lower-cased prompt; the first rule
// with any keyword as a substring wins.
var keywordRules = []keywordRule{
	{
		topic:    "greeting",
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! I'm Loan Approval Bot. I can help you with loan applications, approval criteria, and financial guidance. How can I assist you today?",
	},
	{
		topic:    "approval_criteria",
		keywords: []string{"loan approval", "approval criteria"},
		reply: `Based on our loan dataset analysis, key approval factors include:
• Credit Score: aim for 700+ for better chances
• Income: stable income demonstrating repayment ability
• DTI Ratio: keep below 36% for optimal approval
• Employment: stable employment history
• Loan Amount: reasonable relative to income

Would you like me to analyze a specific application?`,
	},
	{
		topic:    "credit_score",
		keywords: []string{"credit score", "credit"},
		reply: `Credit scores significantly impact loan approval:
• Excellent (750+): high approval likelihood
• Good (700-749): good approval chances
• Fair (650-699): may need stronger other factors
• Poor (<650): consider credit improvement first

Approved applicants in our data average 720+ credit scores.`,
	},
	{
		topic:    "income",
		keywords: []string{"income", "salary"},
		reply: `Income requirements depend on the loan amount:
• Your monthly loan payment should generally be at most 28% of gross monthly income
• Total debt payments should be at most 36% of monthly income
• Higher income relative to the loan amount improves approval chances

Approved applicants in our data average $85,000+ annual income.`,
	},
	{
		topic:    "dti",
		keywords: []string{"dti", "debt to income"},
		reply: `Debt-to-Income (DTI) ratio guidelines:
• Excellent: <20%, very high approval likelihood
• Good: 20-35%, good approval chances
• High: 36-49%, may need a stronger application
• Very High: 50%+, significant improvement needed

Lower DTI ratios demonstrate better repayment capacity.`,
	},
	{
		topic:    "business",
		keywords: []string{"business loan", "business"},
		reply: `Business loan considerations:
• Business plan and financial projections
• Time in business (2+ years preferred)
• Business revenue and profitability
• Personal credit score of the business owner
• Collateral availability

Business loans in our dataset have a 42% approval rate.`,
	},
	{
		topic:    "help",
		keywords: []string{"help", "what can you do"},
		reply: `I can help you with:
• Loan approval criteria and requirements
• Credit score analysis and improvement
• Income and DTI ratio guidance
• Business and personal loan information
• Application analysis and recommendations
• Historical approval patterns from our dataset

Submit an application for analysis to get a personalized assessment!`,
	},
}

const catchAllReply = `I specialize in loan approval guidance and financial advice.

I can help you understand:
• Loan approval criteria and requirements
• Credit score impact on applications
• Income and debt-to-income ratios
• Business vs personal loan differences
• Application improvement strategies

Try asking about a specific loan topic, or submit an application for a personalized assessment!`

// FallbackResponder answers from a fixed set of canned texts. It needs no
// backend and never fails.
type FallbackResponder struct{}

func NewFallbackResponder() *FallbackResponder {
	return &FallbackResponder{}
}

func (f *FallbackResponder) Name() string {
	return "fallback"
}

func (f *FallbackResponder) Reply(prompt string) string {
	reply, _ := matchKeywordRule(prompt)
	return reply
}

// matchKeywordRule returns the reply and the topic that produced it.
func matchKeywordRule(prompt string) (string, string) {
	lower := strings.ToLower(prompt)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply, rule.topic
			}
		}
	}
	return catchAllReply, "catch_all"
}

// Analyze produces the templated per-field assessment of an application.
func (f *FallbackResponder) Analyze(app domain.ApplicationInput) string {
	var b strings.Builder

	b.WriteString("Analysis for application:\n")
	fmt.Fprintf(&b, "• Income: $%s - %s\n", numberPrinter.Sprintf("%.0f", app.Income),
		pick(app.Income > 50000, "Good", "Consider increasing"))

	credit := "Needs improvement"
	switch {
	case app.CreditScore > 750:
		credit = "Excellent"
	case app.CreditScore > 700:
		credit = "Good"
	}
	fmt.Fprintf(&b, "• Credit Score: %d - %s\n", app.CreditScore, credit)

	fmt.Fprintf(&b, "• Loan Amount: $%s - %s\n", numberPrinter.Sprintf("%.0f", app.LoanAmount),
		pick(app.LoanAmount < app.Income*0.5, "Reasonable", "High relative to income"))

	dti := "Needs reduction"
	switch {
	case app.DTIRatio < 20:
		dti = "Excellent"
	case app.DTIRatio < 35:
		dti = "Good"
	}
	fmt.Fprintf(&b, "• DTI Ratio: %g%% - %s\n", app.DTIRatio, dti)

	employed := domain.EmploymentStatus(strings.ToLower(app.EmploymentStatus)) == domain.Employed
	fmt.Fprintf(&b, "• Employment: %s - %s\n\n", app.EmploymentStatus,
		pick(employed, "Positive factor", "Consider securing employment"))

	b.WriteString("Based on our dataset patterns, focus on improving weaker areas for better approval chances.")
	return b.String()
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
