package api

import "medscribe/internal/model"

// noteView is a note as shown in the list screen.
type noteView struct {
	model.NoteRecord
	Preview       string `json:"preview"`
	ClipboardText string `json:"clipboard_text"`
}

func newNoteView(n model.NoteRecord) noteView {
	return noteView{
		NoteRecord:    n,
		Preview:       n.Preview(),
		ClipboardText: n.ClipboardText(),
	}
}
