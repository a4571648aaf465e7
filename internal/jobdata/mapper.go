// Package jobdata maps the job-description and job-detail uploads onto the
// fixed set of fields the prompt template expects.
package jobdata

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

// MissingPolicy decides what an absent key turns into.
type MissingPolicy string

const (
	PolicyStrict      MissingPolicy = "strict"      // fail on the first absent key
	PolicyPlaceholder MissingPolicy = "placeholder" // substitute the placeholder text
	PolicyEmpty       MissingPolicy = "empty"       // substitute "" or an empty list
)

// ParsePolicy accepts the config spelling of a policy.
func ParsePolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyStrict, PolicyPlaceholder, PolicyEmpty:
		return p, nil
	case "":
		return PolicyPlaceholder, nil
	default:
		return "", common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown missing-field policy %q", s), common.ErrInvalidInput)
	}
}

// Paths into the job description.
var (
	pathCompany       = []string{"recruitingContact", "company"}
	pathTerminal      = []string{"recruitingContact", "terminalAddress"}
	pathContractType  = []string{"recruitingContact", "jobCategory"}
	pathTimeZone      = []string{"recruitingContact", "timeZone"}
	pathJobType       = []string{"recruitingContact", "jobType"}
	pathFleet         = []string{"additionalInformation", "Miscellaneous", "Trucks(Can you describe your fleet in brief )"}
	pathRoutes        = []string{"additionalInformation", "Driver Information", "Types of Routes"}
	pathExperience    = []string{"additionalInformation", "Driver Information", "Minimum Required Experience for Drivers"}
	pathSchedule      = []string{"additionalInformation", "Driver Schedule", "Work Schedules"}
	pathStartTime     = []string{"additionalInformation", "Driver Schedule", "Start time for Driver"}
	pathHoursPerDay   = []string{"additionalInformation", "Driver Schedule", "Typical hours run each day"}
	pathMilesPerDay   = []string{"additionalInformation", "Driver Schedule", "Typical Miles Driven each day"}
	pathPay           = []string{"additionalInformation", "Benefits", "How much do you Pay your drivers ?"}
	pathPayFrequency  = []string{"additionalInformation", "Benefits", "Payday"}
	pathTraining      = []string{"additionalInformation", "Benefits", "Training"}
	pathOtherBenefits = []string{"additionalInformation", "Benefits", "Other Benefits"}
)

// Paths into the job detail.
var pathQuestions = []string{"questionData"}

// Fields is the flat mapping rendered into the prompt template.
type Fields struct {
	Company            string   `json:"company"`
	TerminalAddress    string   `json:"terminal_address"`
	ContractType       string   `json:"contract_type"`
	TimeZone           string   `json:"time_zone"`
	JobIDs             []string `json:"job_ids"`
	JobTitles          string   `json:"job_titles"`
	Fleet              string   `json:"fleet"`
	RouteInfo          string   `json:"route_info"`
	RequiredExperience string   `json:"required_experience"`
	Schedule           string   `json:"schedule"`
	StartTime          string   `json:"start_time"`
	HoursPerDay        string   `json:"hours_per_day"`
	MilesPerDay        string   `json:"miles_per_day"`
	StopsPerDay        string   `json:"stops_per_day"`
	Navigation         string   `json:"navigation"`
	WeightLimit        string   `json:"weight_limit"`
	Pay                string   `json:"pay"`
	PayFrequency       string   `json:"pay_frequency"`
	Training           string   `json:"training"`
	Overtime           string   `json:"overtime"`
	Benefits           []string `json:"benefits"`
	ScreeningQuestions []string `json:"screening_questions"`
}

// TemplateData is the template context: every field plus the flow steps and script.
func (f Fields) TemplateData(flowSteps []string, script string) map[string]any {
	return map[string]any{
		"company":             f.Company,
		"terminal_address":    f.TerminalAddress,
		"contract_type":       f.ContractType,
		"time_zone":           f.TimeZone,
		"job_ids":             f.JobIDs,
		"job_titles":          f.JobTitles,
		"fleet":               f.Fleet,
		"route_info":          f.RouteInfo,
		"required_experience": f.RequiredExperience,
		"schedule":            f.Schedule,
		"start_time":          f.StartTime,
		"hours_per_day":       f.HoursPerDay,
		"miles_per_day":       f.MilesPerDay,
		"stops_per_day":       f.StopsPerDay,
		"navigation":          f.Navigation,
		"weight_limit":        f.WeightLimit,
		"pay":                 f.Pay,
		"pay_frequency":       f.PayFrequency,
		"training":            f.Training,
		"overtime":            f.Overtime,
		"benefits":            f.Benefits,
		"screening_questions": f.ScreeningQuestions,
		"flow_steps":          flowSteps,
		"script":              script,
	}
}

type Mapper struct {
	policy      MissingPolicy
	placeholder string
}

func NewMapper(policy MissingPolicy, placeholder string) *Mapper {
	if policy == "" {
		policy = PolicyPlaceholder
	}
	if placeholder == "" {
		placeholder = constants.DefaultPlaceholder
	}
	return &Mapper{policy: policy, placeholder: placeholder}
}

func (m *Mapper) Policy() MissingPolicy { return m.policy }

// Map builds Fields from the two documents. Under PolicyStrict the first
// absent key is returned as ErrMissingField; other policies never fail.
func (m *Mapper) Map(desc, detail Document) (Fields, error) {
	r := &resolver{m: m}

	f := Fields{
		Company:            r.str(desc, "job description", pathCompany),
		TerminalAddress:    r.str(desc, "job description", pathTerminal),
		ContractType:       r.str(desc, "job description", pathContractType),
		TimeZone:           r.str(desc, "job description", pathTimeZone),
		Fleet:              r.str(desc, "job description", pathFleet),
		RouteInfo:          r.str(desc, "job description", pathRoutes),
		RequiredExperience: r.str(desc, "job description", pathExperience),
		Schedule:           r.str(desc, "job description", pathSchedule),
		StartTime:          r.str(desc, "job description", pathStartTime),
		HoursPerDay:        r.str(desc, "job description", pathHoursPerDay),
		MilesPerDay:        r.str(desc, "job description", pathMilesPerDay),
		StopsPerDay:        constants.StopsPerDay,
		Navigation:         constants.Navigation,
		WeightLimit:        constants.WeightLimit,
		Pay:                r.str(desc, "job description", pathPay),
		PayFrequency:       r.str(desc, "job description", pathPayFrequency),
		Training:           r.str(desc, "job description", pathTraining),
		Overtime:           constants.Overtime,
	}

	jobTypes, ok := r.list(desc, "job description", pathJobType)
	if ok {
		f.JobIDs = make([]string, 0, len(jobTypes))
		names := make([]string, 0, len(jobTypes))
		for i, jt := range jobTypes {
			f.JobIDs = append(f.JobIDs, r.item(jt, "job description", pathJobType, i, "jobId"))
			names = append(names, r.item(jt, "job description", pathJobType, i, "jobName"))
		}
		f.JobTitles = strings.Join(names, ", ")
	} else {
		f.JobIDs = m.defaultList()
		f.JobTitles = m.defaultString()
	}

	f.Benefits = []string{
		constants.SickLeaveBenefit,
		r.str(desc, "job description", pathOtherBenefits),
		constants.DirectDepositBenefit,
	}

	// questionData is optional in every policy.
	f.ScreeningQuestions = []string{}
	if v, found := detail.Lookup(pathQuestions...); found {
		if qs, isList := v.([]any); isList {
			for i, q := range qs {
				f.ScreeningQuestions = append(f.ScreeningQuestions, r.item(q, "job detail", pathQuestions, i, "question"))
			}
		}
	}

	if r.err != nil {
		return Fields{}, r.err
	}
	return f, nil
}

func (m *Mapper) defaultString() string {
	if m.policy == PolicyPlaceholder {
		return m.placeholder
	}
	return ""
}

func (m *Mapper) defaultList() []string {
	if m.policy == PolicyPlaceholder {
		return []string{m.placeholder}
	}
	return []string{}
}

// resolver applies the policy and remembers the first strict-mode failure.
type resolver struct {
	m   *Mapper
	err error
}

func (r *resolver) missing(source, path string) string {
	if r.m.policy == PolicyStrict && r.err == nil {
		r.err = common.NewAppError("MISSING_FIELD",
			fmt.Sprintf("%s is missing %s", source, path), common.ErrMissingField)
	}
	return r.m.defaultString()
}

func (r *resolver) str(doc Document, source string, path []string) string {
	v, ok := doc.Lookup(path...)
	if !ok {
		return r.missing(source, DisplayPath(path))
	}
	return Scalar(v)
}

func (r *resolver) list(doc Document, source string, path []string) ([]any, bool) {
	v, ok := doc.Lookup(path...)
	if ok {
		if items, isList := v.([]any); isList {
			return items, true
		}
	}
	r.missing(source, DisplayPath(path))
	return nil, false
}

func (r *resolver) item(v any, source string, parent []string, idx int, key string) string {
	obj, ok := v.(map[string]any)
	if ok {
		if val, exists := obj[key]; exists && val != nil {
			return Scalar(val)
		}
	}
	return r.missing(source, fmt.Sprintf("%s[%d].%s", DisplayPath(parent), idx, key))
}
