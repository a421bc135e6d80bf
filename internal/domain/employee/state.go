package employee

type Operation string

const (
	OpFetchAll Operation = "fetch_all"
	OpFetchOne Operation = "fetch_one"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
)

// ListState mirrors the last successful page fetch. Items is only ever
// replaced wholesale.
type ListState struct {
	Items       []Employee `json:"items"`
	TotalCount  int        `json:"totalCount"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Loading     bool       `json:"loading"`
	Error       string     `json:"error,omitempty"`
}

type CurrentState struct {
	Record  *Employee `json:"record"`
	Loading bool      `json:"loading"`
	Error   string    `json:"error,omitempty"`
}

type OperationState struct {
	Loading bool   `json:"loading"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// State is a full snapshot of the employee store.
type State struct {
	List    ListState      `json:"list"`
	Current CurrentState   `json:"current"`
	Create  OperationState `json:"create"`
	Update  OperationState `json:"update"`
	Delete  OperationState `json:"delete"`
}

func InitialState() State {
	return State{
		List: ListState{
			Items:       []Employee{},
			CurrentPage: 1,
			TotalPages:  1,
		},
	}
}

// Clone returns a deep copy so snapshots handed to callers never alias store memory.
func (s State) Clone() State {
	items := make([]Employee, len(s.List.Items))
	copy(items, s.List.Items)
	s.List.Items = items
	if s.Current.Record != nil {
		rec := *s.Current.Record
		s.Current.Record = &rec
	}
	return s
}
