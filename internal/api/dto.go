package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}

type operatorResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type authResponse struct {
	Operator operatorResponse `json:"operator"`
	Token    string           `json:"token"`
}

type emiEntryRequest struct {
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Amount  string `json:"amount" validate:"required"`
}

type loanRequest struct {
	Principal string            `json:"principal" validate:"required"`
	Schedule  []emiEntryRequest `json:"schedule" validate:"required,min=1,dive"`
}

type assignmentRequest struct {
	DriverName    string `json:"driver_name" validate:"required"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	WeeklyRent    string `json:"weekly_rent" validate:"required"`
	DurationWeeks int    `json:"duration_weeks" validate:"required,min=1"`
}

type createVehicleRequest struct {
	Registration      string             `json:"registration" validate:"required"`
	IsPartnership     bool               `json:"is_partnership"`
	PartnershipPct    string             `json:"partnership_pct"`
	ServiceChargeRate string             `json:"service_charge_rate"`
	Loan              *loanRequest       `json:"loan"`
	Assignment        *assignmentRequest `json:"assignment"`
}

// toModel converts the request into a vehicle profile, parsing every decimal
// and date field.
func (r createVehicleRequest) toModel() (*models.Vehicle, error) {
	v := &models.Vehicle{
		Registration:      r.Registration,
		IsPartnership:     r.IsPartnership,
		PartnershipPct:    decimal.Zero,
		ServiceChargeRate: decimal.Zero,
	}

	var err error
	if r.PartnershipPct != "" {
		if v.PartnershipPct, err = parseAmount("partnership_pct", r.PartnershipPct); err != nil {
			return nil, err
		}
	}
	if r.ServiceChargeRate != "" {
		if v.ServiceChargeRate, err = parseAmount("service_charge_rate", r.ServiceChargeRate); err != nil {
			return nil, err
		}
	}

	if r.Loan != nil {
		loan := &models.Loan{}
		if loan.Principal, err = parseAmount("principal", r.Loan.Principal); err != nil {
			return nil, err
		}
		for i, e := range r.Loan.Schedule {
			due, err := time.Parse("2006-01-02", e.DueDate)
			if err != nil {
				return nil, fmt.Errorf("invalid schedule due_date %q", e.DueDate)
			}
			amount, err := parseAmount("schedule amount", e.Amount)
			if err != nil {
				return nil, err
			}
			loan.Schedule = append(loan.Schedule, models.EMIEntry{
				Sequence: i,
				DueDate:  due.UTC(),
				Amount:   amount,
			})
		}
		v.Loan = loan
	}

	if r.Assignment != nil {
		start, err := time.Parse("2006-01-02", r.Assignment.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment start_date %q", r.Assignment.StartDate)
		}
		rent, err := parseAmount("weekly_rent", r.Assignment.WeeklyRent)
		if err != nil {
			return nil, err
		}
		v.Assignment = &models.Assignment{
			DriverName:    r.Assignment.DriverName,
			StartDate:     start.UTC(),
			WeeklyRent:    rent,
			DurationWeeks: r.Assignment.DurationWeeks,
		}
	}

	return v, nil
}

type vehicleResponse struct {
	ID            string `json:"id"`
	Registration  string `json:"registration"`
	IsPartnership bool   `json:"is_partnership"`
	HasLoan       bool   `json:"has_loan"`
	HasAssignment bool   `json:"has_assignment"`
	CreatedAt     int64  `json:"created_at"`
}

func toVehicleResponse(v *models.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:            v.ID,
		Registration:  v.Registration,
		IsPartnership: v.IsPartnership,
		HasLoan:       v.Loan != nil,
		HasAssignment: v.Assignment != nil,
		CreatedAt:     v.CreatedAt,
	}
}

type earningRequest struct {
	AmountPaid string `json:"amount_paid" validate:"required"`
	EarnedAt   int64  `json:"earned_at" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

type expenseRequest struct {
	Amount     string `json:"amount" validate:"required"`
	IncurredAt int64  `json:"incurred_at" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

type periodRequest struct {
	Type    string `json:"type" validate:"required,oneof=monthly quarterly yearly"`
	Year    int    `json:"year" validate:"required"`
	Month   int    `json:"month" validate:"omitempty,min=1,max=12"`
	Quarter int    `json:"quarter" validate:"omitempty,min=1,max=4"`
}

func (r periodRequest) toModel() (models.Period, error) {
	switch models.PeriodType(r.Type) {
	case models.PeriodMonthly:
		if r.Month == 0 {
			return models.Period{}, fmt.Errorf("month is required for monthly periods")
		}
		return models.NewMonthlyPeriod(r.Year, time.Month(r.Month)), nil
	case models.PeriodQuarterly:
		return models.NewQuarterlyPeriod(r.Year, r.Quarter)
	case models.PeriodYearly:
		return models.NewYearlyPeriod(r.Year), nil
	}
	return models.Period{}, fmt.Errorf("unknown period type %q", r.Type)
}

type instructionRequest struct {
	VehicleID string            `json:"vehicle_id" validate:"required"`
	Class     string            `json:"class" validate:"omitempty,oneof=emi rent"`
	Indices   []int             `json:"indices"`
	Penalties map[string]string `json:"penalties"`
	Component string            `json:"component" validate:"omitempty,oneof=gst service_charge partner_share owner_payment"`
	Period    *periodRequest    `json:"period"`
	Months    []int             `json:"months" validate:"omitempty,dive,min=1,max=12"`
}

func (r instructionRequest) toModel() (service.SettlementInstruction, error) {
	in := service.SettlementInstruction{
		VehicleID: r.VehicleID,
		Class:     models.ObligationClass(r.Class),
		Indices:   r.Indices,
		Component: models.TransactionType(r.Component),
	}
	if (r.Class == "") == (r.Component == "") {
		return in, fmt.Errorf("instruction must set exactly one of class or component")
	}
	if len(r.Penalties) > 0 {
		in.Penalties = make(map[int]string, len(r.Penalties))
		for k, v := range r.Penalties {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return in, fmt.Errorf("invalid penalty index %q", k)
			}
			in.Penalties[idx] = v
		}
	}
	if r.Class != "" && len(r.Months) > 0 {
		return in, fmt.Errorf("months only applies to payout instructions")
	}
	if r.Component != "" {
		if r.Period == nil {
			return in, fmt.Errorf("period is required for payout instructions")
		}
		period, err := r.Period.toModel()
		if err != nil {
			return in, err
		}
		in.Period = period
		in.Months = r.Months
	}
	return in, nil
}

type batchRequest struct {
	Instructions []instructionRequest `json:"instructions" validate:"required,min=1,dive"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	EntityID    string `json:"entity_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	PeriodKey   string `json:"period_key"`
	Status      string `json:"status"`
	BatchID     string `json:"batch_id,omitempty"`
	CompletedAt int64  `json:"completed_at"`
}

func toTransactionResponse(t models.LedgerTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		EntityID:    t.EntityID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		PeriodKey:   t.PeriodKey,
		Status:      string(t.Status),
		BatchID:     t.BatchID,
		CompletedAt: t.CompletedAt,
	}
}

type redirectResponse struct {
	VehicleID      string `json:"vehicle_id"`
	Class          string `json:"class"`
	RequestedIndex int    `json:"requested_index"`
	SettledIndex   int    `json:"settled_index"`
}

type instructionErrorResponse struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type batchResponse struct {
	BatchID      string                     `json:"batch_id"`
	SuccessCount int                        `json:"success_count"`
	FailureCount int                        `json:"failure_count"`
	Applied      []transactionResponse      `json:"applied"`
	Redirects    []redirectResponse         `json:"redirects,omitempty"`
	Errors       []instructionErrorResponse `json:"errors,omitempty"`
}

func toBatchResponse(r *service.BatchResult) batchResponse {
	resp := batchResponse{
		BatchID:      r.BatchID,
		SuccessCount: r.SuccessCount,
		FailureCount: r.FailureCount,
		Applied:      make([]transactionResponse, 0, len(r.Applied)),
	}
	for _, t := range r.Applied {
		resp.Applied = append(resp.Applied, toTransactionResponse(t))
	}
	for _, rd := range r.Redirects {
		resp.Redirects = append(resp.Redirects, redirectResponse{
			VehicleID:      rd.VehicleID,
			Class:          string(rd.Class),
			RequestedIndex: rd.RequestedIndex,
			SettledIndex:   rd.SettledIndex,
		})
	}
	for _, e := range r.Errors {
		resp.Errors = append(resp.Errors, instructionErrorResponse{Index: e.Index, Error: e.Err})
	}
	return resp
}

type obligationResponse struct {
	Class            string `json:"class"`
	Index            int    `json:"index"`
	DueDate          string `json:"due_date"`
	Amount           string `json:"amount"`
	State            string `json:"state"`
	DaysOverdue      int    `json:"days_overdue,omitempty"`
	SuggestedPenalty string `json:"suggested_penalty,omitempty"`
	PaidAt           int64  `json:"paid_at,omitempty"`
}

func toObligationResponse(v service.ObligationView) obligationResponse {
	resp := obligationResponse{
		Class:       string(v.Class),
		Index:       v.Index,
		DueDate:     v.DueDate.Format("2006-01-02"),
		Amount:      v.Amount.String(),
		State:       string(v.State),
		DaysOverdue: v.DaysOverdue,
		PaidAt:      v.PaidAt,
	}
	if !v.SuggestedPenalty.IsZero() {
		resp.SuggestedPenalty = v.SuggestedPenalty.String()
	}
	return resp
}

type obligationSummaryResponse struct {
	VehicleID string               `json:"vehicle_id"`
	EMIs      []obligationResponse `json:"emis"`
	Rents     []obligationResponse `json:"rents"`
}

type monthBreakdownResponse struct {
	Month         string `json:"month"`
	Earnings      string `json:"earnings"`
	Expenses      string `json:"expenses"`
	Profit        string `json:"profit"`
	GST           string `json:"gst"`
	ServiceCharge string `json:"service_charge"`
	PartnerShare  string `json:"partner_share"`
	OwnerPayment  string `json:"owner_payment"`
}

type componentSummaryResponse struct {
	Type              string `json:"type"`
	Computed          string `json:"computed"`
	Outstanding       string `json:"outstanding"`
	AllMonthsPositive bool   `json:"all_months_positive"`
}

type periodSummaryResponse struct {
	VehicleID  string                     `json:"vehicle_id"`
	PeriodKey  string                     `json:"period_key"`
	Profit     string                     `json:"profit"`
	Months     []monthBreakdownResponse   `json:"months"`
	Components []componentSummaryResponse `json:"components"`
}

func toPeriodSummaryResponse(s *service.PeriodSummary) periodSummaryResponse {
	resp := periodSummaryResponse{
		VehicleID: s.VehicleID,
		PeriodKey: s.Breakdown.Period.Key(),
		Profit:    s.Breakdown.Profit.String(),
	}
	for _, m := range s.Breakdown.Months {
		resp.Months = append(resp.Months, monthBreakdownResponse{
			Month:         models.MonthKey(m.Year, m.Month),
			Earnings:      m.Earnings.String(),
			Expenses:      m.Expenses.String(),
			Profit:        m.Profit.String(),
			GST:           m.Waterfall.GST.String(),
			ServiceCharge: m.Waterfall.ServiceCharge.String(),
			PartnerShare:  m.Waterfall.PartnerShare.String(),
			OwnerPayment:  m.Waterfall.OwnerPayment.String(),
		})
	}
	for _, c := range s.Components {
		resp.Components = append(resp.Components, componentSummaryResponse{
			Type:              string(c.Type),
			Computed:          c.Computed.String(),
			Outstanding:       c.Outstanding.String(),
			AllMonthsPositive: c.AllMonthsPositive,
		})
	}
	return resp
}

type balanceResponse struct {
	EntityID  string `json:"entity_id"`
	Amount    string `json:"amount"`
	UpdatedAt int64  `json:"updated_at"`
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, raw)
	}
	return d, nil
}
