package httpapi

// Result is the JSON envelope every endpoint returns. Exactly which payload
// field is set depends on the endpoint: data for records, user/users/token
// for accounts, stats/errors for bulk import.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Token   string   `json:"token,omitempty"`
	User    any      `json:"user,omitempty"`
	Users   any      `json:"users,omitempty"`
	Stats   any      `json:"stats,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// OkData wraps a record or list. count is set when n >= 0.
func OkData(message string, data any, n int) Result {
	r := Result{Success: true, Message: message, Data: data}
	if n >= 0 {
		r.Count = &n
	}
	return r
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}
