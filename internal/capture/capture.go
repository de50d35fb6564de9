// Package capture wraps the external capture+encode collaborator. The core
// only ever sees a frame-size signal; format and resolution are camera
// configuration, not harness behavior.
package capture

// Provider yields encoded camera frames as an opaque size signal. A false
// result means no frame was available, which the vision task treats as
// degraded data rather than an error.
type Provider interface {
	TryCapture() (size int, ok bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() (int, bool)

func (f ProviderFunc) TryCapture() (int, bool) { return f() }
