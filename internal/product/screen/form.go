package screen

import (
	"context"

	"github.com/abgdnv/kasir/internal/product/form"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/state"
)

// Form is the view model of the add and edit product screens.
type Form struct {
	holder    *state.Holder
	validator *form.Validator
	editID    int64
	initial   form.Draft
}

// NewAddForm prepares an empty add-product form.
func NewAddForm(holder *state.Holder, v *form.Validator) *Form {
	return &Form{holder: holder, validator: v}
}

// NewEditForm prepares the edit form of a stored product.
func NewEditForm(holder *state.Holder, v *form.Validator, p model.Product) *Form {
	return &Form{holder: holder, validator: v, editID: p.ID, initial: form.FromProduct(p)}
}

// Initial returns the values the form opens with.
func (f *Form) Initial() form.Draft {
	return f.initial
}

// Editing reports whether the form replaces an existing product.
func (f *Form) Editing() bool {
	return f.editID != 0
}

// Submit validates the draft and saves it through the holder.
// An invalid draft resolves immediately with a *form.ValidationError and leaves the store untouched.
// The future carries the ID of the saved product.
func (f *Form) Submit(ctx context.Context, d form.Draft) *state.Future[int64] {
	p, err := f.validator.Validate(d)
	if err != nil {
		return state.Resolved(int64(0), err)
	}
	if f.Editing() {
		p.ID = f.editID
		return f.holder.Edit(ctx, p)
	}
	return f.holder.Add(ctx, p)
}
