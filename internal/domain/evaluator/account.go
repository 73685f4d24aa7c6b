package evaluator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// AccountRiskEvaluator scores account posture: age, credential hygiene,
// recent failures, and, when a bureau client is configured, external
// verification signals. A nil bureau client disables the external check.
type AccountRiskEvaluator struct {
	bureau port.CreditBureauClient
}

// NewAccountRiskEvaluator creates the account-posture evaluator.
func NewAccountRiskEvaluator(bureau port.CreditBureauClient) *AccountRiskEvaluator {
	return &AccountRiskEvaluator{bureau: bureau}
}

// ID identifies this evaluator variant.
func (e *AccountRiskEvaluator) ID() string { return "account-risk/v1" }

// Dimension returns the account dimension.
func (e *AccountRiskEvaluator) Dimension() valueobject.Dimension {
	return valueobject.DimensionAccount
}

// Evaluate scores the account sub-context with rule-based heuristics.
func (e *AccountRiskEvaluator) Evaluate(ctx context.Context, rc *model.RiskContext) model.PartialAssessment {
	acct := rc.Account
	if acct == nil {
		return insufficientData(e.Dimension(), e.ID(), "no account sub-context supplied")
	}

	score := 0.05
	var factors []model.RiskFactor

	add := func(name string, weight float64, detail string) {
		score += weight
		factors = append(factors, model.RiskFactor{
			Name:        name,
			Dimension:   e.Dimension(),
			Score:       model.ClampScore(weight),
			Detail:      detail,
			EvaluatorID: e.ID(),
		})
	}

	switch {
	case acct.AccountAgeDays < 7:
		add("new_account", 0.25, fmt.Sprintf("account is %d days old", acct.AccountAgeDays))
	case acct.AccountAgeDays < 30:
		add("young_account", 0.15, fmt.Sprintf("account is %d days old", acct.AccountAgeDays))
	}

	if acct.FailedLogins24h >= 10 {
		add("credential_stuffing_pattern", 0.35, fmt.Sprintf("%d failed logins in 24h", acct.FailedLogins24h))
	} else if acct.FailedLogins24h >= 3 {
		add("failed_login_burst", 0.2, fmt.Sprintf("%d failed logins in 24h", acct.FailedLogins24h))
	}

	if !acct.MFAEnrolled {
		add("no_mfa_enrolled", 0.1, "subject has no second factor enrolled")
	}

	if acct.PasswordAgeDays > 365 {
		add("stale_password", 0.05, fmt.Sprintf("password unchanged for %d days", acct.PasswordAgeDays))
	}

	if acct.DormantReactivate {
		add("dormant_reactivation", 0.15, "dormant account reactivated this session")
	}

	if acct.TransactionAmount.GreaterThan(decimal.NewFromInt(50000)) {
		add("very_high_value_transaction", 0.25, acct.TransactionAmount.String()+" "+acct.Currency)
	} else if acct.TransactionAmount.GreaterThan(decimal.NewFromInt(10000)) {
		add("high_value_transaction", 0.15, acct.TransactionAmount.String()+" "+acct.Currency)
	}

	if e.bureau != nil {
		result, err := e.bureau.CheckScore(ctx, rc.SubjectID)
		switch {
		case err != nil:
			// External collaborator failure is degraded data, not an
			// evaluation failure; the reason stays in the audit trail.
			factors = append(factors, model.RiskFactor{
				Name:        FactorAPIError,
				Dimension:   e.Dimension(),
				Score:       neutralScore,
				Detail:      "credit bureau unreachable: " + err.Error(),
				EvaluatorID: e.ID(),
			})
			score += 0.05
		case !result.Success:
			factors = append(factors, model.RiskFactor{
				Name:        FactorAPIError,
				Dimension:   e.Dimension(),
				Score:       neutralScore,
				Detail:      "credit bureau returned no answer",
				EvaluatorID: e.ID(),
			})
			score += 0.05
		default:
			if result.IsWatchlisted {
				add("watchlist_hit", 0.35, "subject appears on a watchlist")
			}
			if result.HasRestrictions {
				add("bureau_restrictions", 0.15, "bureau reports active restrictions")
			}
		}
	}

	return finish(e.Dimension(), score, factors)
}
