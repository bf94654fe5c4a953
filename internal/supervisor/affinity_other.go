//go:build !linux

package supervisor

type threadPinner struct{}

func (threadPinner) Pin(int) error {
	return ErrAffinityUnsupported
}
