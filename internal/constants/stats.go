package constants

const (
	DaysPerYear     = 365
	DaysPerLeapYear = 366
	WeeksPerYear    = 52
	MonthsPerYear   = 12
)
