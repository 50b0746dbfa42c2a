package resource

var (
	// DefaultIdentityKeys are enough to look up a single BoxBilling record.
	DefaultIdentityKeys = []string{"id", "code", "type", "product_id"}
	// DefaultGeneratedKeys are assigned by BoxBilling and never sent on create.
	DefaultGeneratedKeys = []string{"id", "product_id"}
)

type Filter struct {
	IdentityKeys  []string
	GeneratedKeys []string
}

func DefaultFilter() Filter {
	return Filter{
		IdentityKeys:  append([]string(nil), DefaultIdentityKeys...),
		GeneratedKeys: append([]string(nil), DefaultGeneratedKeys...),
	}
}

func (f Filter) IdentityFields(data Data) Data {
	keys := keySet(f.IdentityKeys)
	selected := make(Data, len(keys))
	for key, value := range data {
		if _, ok := keys[key]; ok {
			selected[key] = value
		}
	}
	return selected
}

func (f Filter) StripGenerated(data Data) Data {
	keys := keySet(f.GeneratedKeys)
	stripped := make(Data, len(data))
	for key, value := range data {
		if _, ok := keys[key]; ok {
			continue
		}
		stripped[key] = value
	}
	return stripped
}

func IdentityFields(data Data) Data {
	return DefaultFilter().IdentityFields(data)
}

func StripGenerated(data Data) Data {
	return DefaultFilter().StripGenerated(data)
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
