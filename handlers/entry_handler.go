package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/services"
)

const maxFormBytes = 64 << 10

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(es services.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: es,
	}
}

// flexID принимает id участника числом или строкой. Исходный текст сохраняется,
// чтобы неверные id дошли до валидации и вернулись как нарушения.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("member id must be a number or a string: %w", err)
		}
		*f = flexID(n.String())
	}
	return nil
}

type submitEntryRequest struct {
	Applicant   string   `json:"applicant"`
	PapaMembers []flexID `json:"papa_members"`
	LineMember1 flexID   `json:"line_member_1"`
	LineMember2 flexID   `json:"line_member_2"`
	LineMember3 flexID   `json:"line_member_3"`
}

func (req submitEntryRequest) toInput() services.SubmitEntryInput {
	in := services.SubmitEntryInput{
		Applicant:   req.Applicant,
		LineMembers: [models.LineSlotCount]string{string(req.LineMember1), string(req.LineMember2), string(req.LineMember3)},
	}
	if req.PapaMembers != nil {
		in.PapaMembers = make([]string, 0, len(req.PapaMembers))
		for _, id := range req.PapaMembers {
			in.PapaMembers = append(in.PapaMembers, string(id))
		}
	}
	return in
}

func (h *EntryHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/entries", http.StatusFound)
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryService.ListEntries(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"entries": entries}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.GetEntry(r.Context(), entryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"entry": entry}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitEntry принимает JSON или обычную HTML-форму. Форма после успеха
// перенаправляет на список, JSON получает созданную запись.
func (h *EntryHandler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	fromForm := isFormRequest(r)

	var input services.SubmitEntryInput
	if fromForm {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid form body: %w", err))
			return
		}
		input = inputFromForm(r)
	} else {
		var req submitEntryRequest
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		input = req.toInput()
	}

	entry, err := h.entryService.SubmitEntry(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if fromForm {
		http.Redirect(w, r, "/entries", http.StatusSeeOther)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/entries/%d", entry.ID))
	response := jsonResponse{"entry": entry}
	if err := writeJSON(w, http.StatusCreated, response, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EntryHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.entryService.ListMembers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"members": members}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded"
}

// inputFromForm читает papa_members[] (или papa_members) и line_member_1..3.
// Если papa_members в форме нет совсем, список остаётся nil.
func inputFromForm(r *http.Request) services.SubmitEntryInput {
	in := services.SubmitEntryInput{Applicant: r.PostForm.Get(services.FieldApplicant)}

	for _, key := range []string{services.FieldPapaMembers + "[]", services.FieldPapaMembers} {
		if values, ok := r.PostForm[key]; ok {
			in.PapaMembers = append(in.PapaMembers, values...)
		}
	}

	for i := range in.LineMembers {
		in.LineMembers[i] = r.PostForm.Get(services.LineField(i + 1))
	}
	return in
}
