package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesktop_PicksAlertForSound(t *testing.T) {
	var calls []string
	d := NewDesktop(nil)
	d.notify = func(title, _ string, _ any) error { calls = append(calls, "notify:"+title); return nil }
	d.alert = func(title, _ string, _ any) error { calls = append(calls, "alert:"+title); return nil }

	assert.NoError(t, d.Notify("Vorschlag", "2024-03-15_Vodafone_Rechnung.pdf", false))
	assert.NoError(t, d.Notify("Abgeschlossen", "3 umbenannt", true))
	assert.Equal(t, []string{"notify:Vorschlag", "alert:Abgeschlossen"}, calls)
}

func TestDesktop_ReturnsBackendError(t *testing.T) {
	d := NewDesktop(nil)
	d.notify = func(string, string, any) error { return errors.New("no dbus") }
	assert.EqualError(t, d.Notify("t", "m", false), "no dbus")
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.Notify("t", "m", true))
}
