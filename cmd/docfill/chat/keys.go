package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"docfill/internal/session"
)

// keyMap is the action control surface.
type keyMap struct {
	Send       key.Binding
	Upload     key.Binding
	NextMarker key.Binding
	PrevMarker key.Binding
	Edit       key.Binding
	Complete   key.Binding
	Download   key.Binding
	Reset      key.Binding
	Refresh    key.Binding
	Dismiss    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "upload"),
		),
		NextMarker: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevMarker: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Edit: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "edit field"),
		),
		Complete: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "complete"),
		),
		Download: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "download"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "start over"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "refresh preview"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// sync enables only the actions the snapshot currently allows, so the help
// footer lists exactly what will respond.
func (k *keyMap) sync(s session.Snapshot) {
	has := s.HasSession()
	k.Send.SetEnabled(s.CanSend())
	k.Upload.SetEnabled(!s.IsLoading)
	k.NextMarker.SetEnabled(s.PreviewHTML != "")
	k.PrevMarker.SetEnabled(s.PreviewHTML != "")
	k.Edit.SetEnabled(has && !s.IsLoading)
	k.Complete.SetEnabled(s.CanComplete())
	k.Download.SetEnabled(s.CanDownload())
	k.Reset.SetEnabled(s.CanReset())
	k.Refresh.SetEnabled(has)
	k.Dismiss.SetEnabled(s.Error != "")
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Upload, k.NextMarker, k.Edit, k.Complete, k.Download, k.Reset, k.Dismiss, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.ScrollUp, k.ScrollDown},
		{k.NextMarker, k.PrevMarker, k.Edit, k.Refresh},
		{k.Upload, k.Complete, k.Download, k.Reset},
		{k.Dismiss, k.Quit},
	}
}
