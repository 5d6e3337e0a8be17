package form

// Status classifies one fill attempt. Failures never abort the run; the
// report makes partial results observable instead.
type Status string

const (
	StatusFilled  Status = "filled"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type Result struct {
	Field  string `json:"field"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	Results []Result `json:"results"`
}

func (r *Report) add(field string, status Status, detail string) {
	r.Results = append(r.Results, Result{Field: field, Status: status, Detail: detail})
}

func (r *Report) count(status Status) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) Filled() int  { return r.count(StatusFilled) }
func (r *Report) Skipped() int { return r.count(StatusSkipped) }
func (r *Report) Failed() int  { return r.count(StatusFailed) }
