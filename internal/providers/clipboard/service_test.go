package clipboard

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/providers/filler"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/providers/transform"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

const sourcePage = `<html><body>
<form id="quote">
  <label for="fn">First Name</label><input id="fn" name="firstName" value="Jane">
  <label for="ln">Last Name</label><input id="ln" name="lastName" value="Doe">
  <label for="em">Email</label><input id="em" type="email" name="email" value="jane@example.com">
  <label for="dob">Date of Birth</label><input id="dob" type="date" name="dob" value="1990-01-15">
  <label for="ph">Phone</label><input id="ph" type="tel" name="phone" value="5551234567">
  <label for="mk">Vehicle Make</label><input id="mk" name="make" value="Toyota">
  <label for="notes">Notes</label><textarea id="notes" name="notes"></textarea>
</form>
</body></html>`

const targetPage = `<html><body>
<form>
  <label for="given">Given Name</label><input id="given" name="given">
  <label for="surname">Surname</label><input id="surname" name="surname">
  <label for="mail">E-mail</label><input id="mail" name="mail">
  <label for="birth">Birth Date</label><input id="birth" name="birthdate">
  <label for="tel">Phone</label><input id="tel" name="tel">
</form>
</body></html>`

func newService(store Store) *Service {
	return NewService(
		scraper.NewScanner(nil),
		scraper.NewGrouper(nil),
		matcher.NewHeuristic(matcher.DefaultConfig(), nil, nil, nil),
		filler.NewExecutor(dom.NewDispatcher(0), transform.DefaultOptions(), nil, nil),
		store,
		nil,
		nil,
	)
}

func valueOf(t *testing.T, doc *dom.Document, id string) string {
	t.Helper()
	n, err := dom.IDLocator(id).Resolve(doc)
	require.NoError(t, err)
	return dom.Value(n)
}

func TestCopy(t *testing.T) {
	store := NewMemoryStore(0)
	svc := newService(store)

	snap, err := svc.Copy(context.Background(), dom.MustParse(sourcePage), "https://crm.example.com/q/1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(snap.ID, "clip_"))
	assert.Equal(t, "https://crm.example.com/q/1", snap.SourceURL)
	assert.Equal(t, types.ExtractionForm, snap.Metadata.ExtractionMethod)
	assert.Equal(t, "1.0.0", snap.Metadata.Version)
	assert.Equal(t, 6, snap.Metadata.FieldCount, "empty notes dropped")

	require.Len(t, snap.Entities, 2)
	assert.Equal(t, types.EntityCustomer, snap.Entities[0].Type)
	assert.Equal(t, types.EntityVehicle, snap.Entities[1].Type)

	current, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.ID, current.ID)
}

func TestCopyNoData(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{name: "no controls", page: `<html><body><p>Nothing here</p></body></html>`},
		{name: "only empty controls", page: `<html><body><form><input name="a"><textarea name="b"></textarea></form></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(0)
			_, err := newService(store).Copy(context.Background(), dom.MustParse(tt.page), "")
			require.ErrorIs(t, err, ErrNoData)
			assert.Equal(t, "No form data found on this page", ErrNoData.Error())

			_, err = store.Current(context.Background())
			assert.ErrorIs(t, err, ErrEmpty, "nothing stored")
		})
	}
}

func TestPasteFromCurrent(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	_, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)

	target := dom.MustParse(targetPage)
	outcome, err := svc.Paste(ctx, target, nil)
	require.NoError(t, err)

	assert.True(t, outcome.Success, outcome.Errors)
	assert.Equal(t, 5, outcome.TotalFields)
	assert.Equal(t, 5, outcome.FilledFields)
	assert.Equal(t, "Jane", valueOf(t, target, "given"))
	assert.Equal(t, "Doe", valueOf(t, target, "surname"))
	assert.Equal(t, "jane@example.com", valueOf(t, target, "mail"))
	assert.Equal(t, "(555) 123-4567", valueOf(t, target, "tel"))
}

func TestPasteSkipsToggledOffFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	snap, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)
	for i, f := range snap.Entities[0].Fields {
		if f.Name == "email" {
			snap.Entities[0].Fields[i].ToggleState = false
		}
	}

	target := dom.MustParse(targetPage)
	outcome, err := svc.Paste(ctx, target, snap)
	require.NoError(t, err)

	assert.Equal(t, "Jane", valueOf(t, target, "given"))
	assert.Empty(t, valueOf(t, target, "mail"))
	assert.Equal(t, 4, outcome.TotalFields)
	for _, r := range outcome.Results {
		assert.NotEqual(t, `//*[@id="mail"]`, r.Locator)
	}
}

func TestPasteDisabledEntity(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	snap, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)
	snap.Entities[0].ToggleState = false

	outcome, err := svc.Paste(ctx, dom.MustParse(targetPage), snap)
	require.NoError(t, err)
	assert.Zero(t, outcome.TotalFields)
	assert.True(t, outcome.Success)
}

func TestPasteErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newService(nil).Paste(ctx, dom.MustParse(targetPage), nil)
	assert.ErrorIs(t, err, ErrEmpty)

	invalid := testSnapshot("")
	_, err = newService(nil).Paste(ctx, dom.MustParse(targetPage), invalid)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = newService(nil).Paste(ctx, dom.MustParse(`<html><body></body></html>`), testSnapshot("clip_a"))
	assert.ErrorIs(t, err, scraper.ErrNoControls)
}

func TestPasteObserved(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	snap, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)

	var seen []int
	outcome, err := svc.PasteObserved(ctx, dom.MustParse(targetPage), snap, func(i int, r types.FieldResult) {
		seen = append(seen, i)
	})
	require.NoError(t, err)
	assert.Len(t, seen, outcome.TotalFields)
	for i, idx := range seen {
		assert.Equal(t, i, idx)
	}
}

func TestPlanLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	snap, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)

	target := dom.MustParse(targetPage)
	before, err := target.HTML()
	require.NoError(t, err)

	mappings, err := svc.Plan(ctx, target, snap)
	require.NoError(t, err)
	assert.NotEmpty(t, mappings)

	after, err := target.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveAndHistory(t *testing.T) {
	ctx := context.Background()
	metrics := monitoring.NewMetrics()
	svc := NewService(
		scraper.NewScanner(nil),
		scraper.NewGrouper(nil),
		matcher.NewHeuristic(matcher.DefaultConfig(), nil, nil, nil),
		filler.NewExecutor(nil, transform.DefaultOptions(), nil, nil),
		nil,
		nil,
		metrics,
	)

	_, err := svc.Save(ctx, "POL-1", nil)
	assert.ErrorIs(t, err, ErrEmpty)

	snap, err := svc.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)
	rec, err := svc.Save(ctx, "POL-1", nil)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, rec.Snapshot.ID)
	assert.True(t, strings.HasPrefix(rec.ID, "rec_"))

	records, err := svc.History(ctx, "POL-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, svc.Clear(ctx))
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, int64(1), metrics.GetSnapshot().Scans)
}
