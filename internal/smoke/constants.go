package smoke

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// PercentageMultiplier converts ratios to percentages.
const PercentageMultiplier = 100

// Endpoints lists the aggregate endpoints every run checks.
var Endpoints = []string{
	"/api/v1/overview",
	"/api/v1/departments",
	"/api/v1/salaries",
	"/api/v1/diversity",
	"/api/v1/hiring",
}

// Charts lists the chart ids every run fetches.
var Charts = []string{
	"headcount", "top_earners", "department_tenure", "title_tenure",
	"salary_histogram", "salary_box", "salary_by_department_title", "salary_growth",
	"gender_by_department", "title_by_gender", "hires_per_year",
}

// Pages lists the HTML destinations every run checks.
var Pages = []string{"/overview", "/attrition", "/departments", "/salaries", "/diversity", "/hiring"}
