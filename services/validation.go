package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/party-bets/models"
)

type ViolationKind string

const (
	KindMissingApplicant   ViolationKind = "MissingApplicant"
	KindPapaCountInvalid   ViolationKind = "PapaCountInvalid"
	KindPapaMemberNotFound ViolationKind = "PapaMemberNotFound"
	KindLineMemberMissing  ViolationKind = "LineMemberMissing"
	KindLineMemberNotFound ViolationKind = "LineMemberNotFound"
)

const (
	FieldApplicant   = "applicant"
	FieldPapaMembers = "papa_members"
)

// LineField returns the form field name of a game 2 slot (1..3).
func LineField(slot int) string {
	return fmt.Sprintf("line_member_%d", slot)
}

type Violation struct {
	Field   string        `json:"field"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
	Value   string        `json:"value,omitempty"`
}

// ValidationError carries every rule a submission broke.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func (e *ValidationError) HasKind(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Fields returns the first message per field.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		if _, ok := fields[v.Field]; !ok {
			fields[v.Field] = v.Message
		}
	}
	return fields
}

func (e *ValidationError) add(field string, kind ViolationKind, msg, value string) {
	e.Violations = append(e.Violations, Violation{Field: field, Kind: kind, Message: msg, Value: value})
}

// SubmitEntryInput is a raw submission as it arrives from a form or JSON body.
type SubmitEntryInput struct {
	Applicant string
	// nil when the field was not sent at all.
	PapaMembers []string
	// "" when the slot was not sent.
	LineMembers [models.LineSlotCount]string
}

// ReferencedIDs returns every well-formed member id in the input, once each.
func (in SubmitEntryInput) ReferencedIDs() []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(in.PapaMembers)+models.LineSlotCount)
	collect := func(raw string) {
		if id, ok := parseMemberID(raw); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	for _, raw := range in.PapaMembers {
		collect(raw)
	}
	for _, raw := range in.LineMembers {
		collect(raw)
	}
	return ids
}

// ValidateSubmission checks in against the known roster. All rules are
// evaluated; on success the draft holds the trimmed applicant, the
// deduplicated game 1 ids and the game 2 ids by slot.
//
// Duplicate game 1 ids are accepted and collapsed, and game 2 members may
// repeat across slots.
func ValidateSubmission(in SubmitEntryInput, roster models.Roster) (models.EntryDraft, *ValidationError) {
	verr := &ValidationError{}
	draft := models.EntryDraft{Applicant: strings.TrimSpace(in.Applicant)}

	switch {
	case draft.Applicant == "":
		verr.add(FieldApplicant, KindMissingApplicant, "applicant name is required", "")
	case utf8.RuneCountInString(draft.Applicant) > models.ApplicantMaxLength:
		verr.add(FieldApplicant, KindMissingApplicant,
			fmt.Sprintf("applicant name must be at most %d characters", models.ApplicantMaxLength), "")
	}

	switch {
	case in.PapaMembers == nil:
		verr.add(FieldPapaMembers, KindPapaCountInvalid,
			fmt.Sprintf("game 1 requires picking %d members", models.PapaPickCount), "")
	case len(in.PapaMembers) != models.PapaPickCount:
		verr.add(FieldPapaMembers, KindPapaCountInvalid,
			fmt.Sprintf("game 1 requires exactly %d members, got %d", models.PapaPickCount, len(in.PapaMembers)),
			strconv.Itoa(len(in.PapaMembers)))
	}

	picked := make(map[int64]struct{}, len(in.PapaMembers))
	for i, raw := range in.PapaMembers {
		id, ok := parseMemberID(raw)
		if !ok || !roster.Has(id) {
			verr.add(fmt.Sprintf("%s.%d", FieldPapaMembers, i), KindPapaMemberNotFound,
				fmt.Sprintf("game 1 member %q does not exist", raw), raw)
			continue
		}
		picked[id] = struct{}{}
	}
	draft.PapaMemberIDs = make([]int64, 0, len(picked))
	for id := range picked {
		draft.PapaMemberIDs = append(draft.PapaMemberIDs, id)
	}
	sort.Slice(draft.PapaMemberIDs, func(i, j int) bool { return draft.PapaMemberIDs[i] < draft.PapaMemberIDs[j] })

	for i, raw := range in.LineMembers {
		slot := i + 1
		if strings.TrimSpace(raw) == "" {
			verr.add(LineField(slot), KindLineMemberMissing, fmt.Sprintf("game 2 slot %d is required", slot), "")
			continue
		}
		id, ok := parseMemberID(raw)
		if !ok || !roster.Has(id) {
			verr.add(LineField(slot), KindLineMemberNotFound,
				fmt.Sprintf("game 2 slot %d member %q does not exist", slot, raw), raw)
			continue
		}
		draft.LineMemberIDs[i] = id
	}

	if len(verr.Violations) > 0 {
		return models.EntryDraft{}, verr
	}
	return draft, nil
}

func parseMemberID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
