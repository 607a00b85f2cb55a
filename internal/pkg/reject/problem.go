package reject

// Problem is the JSON error body every handler writes.
type Problem struct {
	Title  string            `json:"title,omitempty"`
	Status int               `json:"status,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Code   string            `json:"message,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// ProblemWithTrace pairs the client facing problem with the error that caused it.
type ProblemWithTrace struct {
	Problem Problem
	Cause   error
}

func (pt *ProblemWithTrace) Error() string {
	if pt.Cause == nil {
		return pt.Problem.Title
	}
	return pt.Problem.Title + ": " + pt.Cause.Error()
}

func (pt *ProblemWithTrace) Unwrap() error {
	return pt.Cause
}

// Trace wraps a problem and its cause for returning from a service.
func Trace(problem Problem, cause error) *ProblemWithTrace {
	return &ProblemWithTrace{Problem: problem, Cause: cause}
}

func NewProblem() *Problem {
	return &Problem{}
}

func (p *Problem) WithTitle(title string) *Problem {
	p.Title = title
	return p
}

func (p *Problem) WithStatus(status int) *Problem {
	p.Status = status
	return p
}

func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

func (p *Problem) WithCode(code string) *Problem {
	p.Code = code
	return p
}

func (p *Problem) WithParam(key string, value string) *Problem {
	if p.Params == nil {
		p.Params = map[string]string{}
	}
	p.Params[key] = value
	return p
}

func (p *Problem) Build() Problem {
	return *p
}
