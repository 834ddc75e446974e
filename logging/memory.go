package logging

// MemorySink keeps every entry it receives, in order.
type MemorySink struct {
	Entries []Entry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (sink *MemorySink) Write(entry Entry) {
	sink.Entries = append(sink.Entries, entry)
}

// Filter returns the entries logged at level.
func (sink *MemorySink) Filter(level Level) []Entry {
	var ret []Entry
	for _, entry := range sink.Entries {
		if entry.Level == level {
			ret = append(ret, entry)
		}
	}
	return ret
}

// Messages returns the message text of the entries logged at level.
func (sink *MemorySink) Messages(level Level) []string {
	var ret []string
	for _, entry := range sink.Filter(level) {
		ret = append(ret, entry.Message)
	}
	return ret
}

func (sink *MemorySink) Reset() {
	sink.Entries = nil
}
