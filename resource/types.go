package resource

type Value = any

// Data is a flat desired-state record keyed by BoxBilling field name.
type Data = map[string]any

type Descriptor struct {
	Path string `json:"path" yaml:"path"`
	Data Data   `json:"data,omitempty" yaml:"data,omitempty"`
}

type Action string

const (
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func ParseAction(value string) (Action, bool) {
	switch Action(value) {
	case ActionGet, ActionCreate, ActionUpdate, ActionDelete:
		return Action(value), true
	default:
		return "", false
	}
}

func CloneData(src Data) Data {
	if src == nil {
		return Data{}
	}
	dst := make(Data, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

// AsData converts a decoded API result into a record. Nil stays nil; values
// that are not mappings yield an empty record so they still count as present.
func AsData(value Value) Data {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return typed
	default:
		return Data{}
	}
}
