package constants

// Values the field mapper always emits regardless of the uploaded documents.
const (
	StopsPerDay = "150/day (extra $1 for additional stops)"
	Navigation  = "Allowed"
	WeightLimit = "Up to 150 lbs (dolly provided)"
	Overtime    = "After 40 hrs/week"

	SickLeaveBenefit     = "Sick Leave: 3 days after 60 days"
	DirectDepositBenefit = "Direct deposit: Yes"

	DefaultPlaceholder = "Not specified"
)
