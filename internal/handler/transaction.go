package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shadowcal/internal/model"
	"shadowcal/internal/pipeline"
)

type TransactionHandler struct {
	pipe   *pipeline.Pipeline
	logger *slog.Logger
}

func NewTransactionHandler(pipe *pipeline.Pipeline, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{pipe: pipe, logger: logger}
}

// wireTransaction is the ingest payload. Document stays raw until the class
// is known.
type wireTransaction struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	Actor           string          `json:"actor"`
	ObjectID        string          `json:"object_id"`
	ObjectClass     string          `json:"object_class"`
	AttachedTo      string          `json:"attached_to"`
	AttachedToClass string          `json:"attached_to_class"`
	Collection      string          `json:"collection"`
	Document        json.RawMessage `json:"document"`
	Operations      map[string]any  `json:"operations"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Ingest handles POST /api/transactions.
func (h *TransactionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var wire wireTransaction
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	tx, err := wire.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	applied, err := h.pipe.Process(r.Context(), tx)
	if err != nil {
		h.logger.Error("process transaction", "tx", tx.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply transaction")
		return
	}

	ids := make([]model.Ref, 0, len(applied))
	for _, a := range applied {
		ids = append(ids, a.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": len(applied),
		"ids":     ids,
	})
}

func (wt wireTransaction) toTransaction() (model.Transaction, error) {
	kind := model.TxKind(wt.Kind)
	switch kind {
	case model.TxCreate, model.TxUpdate, model.TxRemove:
	default:
		return model.Transaction{}, fmt.Errorf("unknown transaction kind %q", wt.Kind)
	}

	class := model.Class(wt.ObjectClass)
	if wt.Actor == "" || wt.ObjectID == "" {
		return model.Transaction{}, fmt.Errorf("actor and object_id are required")
	}

	tx := model.Transaction{
		ID:              model.Ref(wt.ID),
		Kind:            kind,
		Actor:           model.Ref(wt.Actor),
		ObjectID:        model.Ref(wt.ObjectID),
		ObjectClass:     class,
		AttachedTo:      model.Ref(wt.AttachedTo),
		AttachedToClass: model.Class(wt.AttachedToClass),
		Collection:      wt.Collection,
		Operations:      wt.Operations,
		CreatedAt:       wt.CreatedAt,
	}
	if tx.ID == "" {
		tx.ID = model.NewRef()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	if kind == model.TxCreate {
		doc, err := decodeDocument(class, wt.Document)
		if err != nil {
			return model.Transaction{}, err
		}
		tx.Document = doc
	}
	if kind == model.TxUpdate && len(tx.Operations) == 0 {
		return model.Transaction{}, fmt.Errorf("update carries no operations")
	}

	return tx, nil
}

func decodeDocument(class model.Class, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("create carries no document")
	}

	var doc any
	switch class {
	case model.ClassEvent:
		doc = &model.Event{}
	case model.ClassCalendar:
		doc = &model.Calendar{}
	case model.ClassAccount:
		doc = &model.Account{}
	case model.ClassPerson:
		doc = &model.Person{}
	default:
		return nil, fmt.Errorf("unsupported document class %q", class)
	}

	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", class, err)
	}
	return doc, nil
}
