package shared

// Lifecycle describes how an entity type leaves the system
type Lifecycle string

const (
	// LifecycleSoftDelete keeps the record and flips a status/flag
	LifecycleSoftDelete Lifecycle = "soft_delete"
	// LifecycleHardDelete removes the record
	LifecycleHardDelete Lifecycle = "hard_delete"
	// LifecycleRetained never removes the record; terminal statuses end it
	LifecycleRetained Lifecycle = "retained"
)

// LifecycleAware is implemented by aggregates that declare their deletion semantics
type LifecycleAware interface {
	Lifecycle() Lifecycle
}
