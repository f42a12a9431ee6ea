package service

import (
	"testing"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreService_Create(t *testing.T) {
	env := setupServiceTest(t)
	_, admin := env.signup(t, "Administrator Person", "admin@example.com", model.RoleAdmin)
	owner, ownerSession := env.signup(t, "Shop Owner Person", "owner@example.com", model.RoleStoreOwner)
	customer, customerSession := env.signup(t, "Regular Customer", "customer@example.com", model.RoleNormalUser)

	valid := StoreInput{Name: "Corner Bakery", Email: "bakery@example.com", Address: "42 Flour Lane, Springfield"}
	withOwner := func(id uint) StoreInput {
		in := valid
		in.OwnerID = &id
		return in
	}

	tests := []struct {
		name      string
		session   *Session
		input     StoreInput
		wantErr   error
		wantOwner *uint
	}{
		{name: "Admin without owner", session: admin, input: valid},
		{name: "Admin assigns store owner", session: admin, input: withOwner(owner.ID), wantOwner: &owner.ID},
		{name: "Admin assigns normal user", session: admin, input: withOwner(customer.ID), wantErr: ErrOwnerNotFound},
		{name: "Admin assigns missing user", session: admin, input: withOwner(9999), wantErr: ErrOwnerNotFound},
		{name: "Owner creates own store", session: ownerSession, input: valid, wantOwner: &owner.ID},
		{name: "Owner assigns someone else", session: ownerSession, input: withOwner(customer.ID), wantErr: ErrForbidden},
		{name: "Normal user is forbidden", session: customerSession, input: valid, wantErr: ErrForbidden},
		{name: "Short name", session: admin, input: StoreInput{Name: "AB", Email: "ab@example.com", Address: "42 Flour Lane"}, wantErr: ErrInvalidInput},
		{name: "Short address", session: admin, input: StoreInput{Name: "Bakery", Email: "ab@example.com", Address: "Lane"}, wantErr: ErrInvalidInput},
		{name: "Bad email", session: admin, input: StoreInput{Name: "Bakery", Email: "nope", Address: "42 Flour Lane"}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := env.storeSvc.Create(tt.session, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, view)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, view.ID)
			assert.NotNil(t, view.Ratings)
			assert.Empty(t, view.Ratings)
			assert.Nil(t, view.Average)
			assert.Equal(t, tt.wantOwner, view.OwnerID)
		})
	}
}

func TestStoreService_Update(t *testing.T) {
	env := setupServiceTest(t)
	_, admin := env.signup(t, "Administrator Person", "admin@example.com", model.RoleAdmin)
	owner, ownerSession := env.signup(t, "Shop Owner Person", "owner@example.com", model.RoleStoreOwner)
	_, otherOwner := env.signup(t, "Other Shop Owner", "other@example.com", model.RoleStoreOwner)
	_, customer := env.signup(t, "Regular Customer", "customer@example.com", model.RoleNormalUser)

	store := env.store(t, admin, "bakery", &owner.ID)

	_, err := env.storeSvc.Update(otherOwner, store.ID, StoreUpdate{Name: "Stolen Bakery"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.storeSvc.Update(customer, store.ID, StoreUpdate{Name: "Stolen Bakery"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.storeSvc.Update(ownerSession, store.ID, StoreUpdate{Address: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := env.storeSvc.Update(ownerSession, store.ID, StoreUpdate{Name: "Bakery Deluxe"})
	require.NoError(t, err)
	assert.Equal(t, "Bakery Deluxe", updated.Name)
	assert.Equal(t, store.Email, updated.Email)
	assert.Equal(t, store.Address, updated.Address)

	updated, err = env.storeSvc.Update(admin, store.ID, StoreUpdate{Email: "NEW@bakery.example"})
	require.NoError(t, err)
	assert.Equal(t, "new@bakery.example", updated.Email)

	_, err = env.storeSvc.Update(admin, 9999, StoreUpdate{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestStoreService_ListWithRatings(t *testing.T) {
	env := setupServiceTest(t)
	_, admin := env.signup(t, "Administrator Person", "admin@example.com", model.RoleAdmin)
	_, u1 := env.signup(t, "First Customer", "one@example.com", model.RoleNormalUser)
	_, u2 := env.signup(t, "Second Customer", "two@example.com", model.RoleNormalUser)

	apple := env.store(t, admin, "apple", nil)
	mango := env.store(t, admin, "mango", nil)
	env.store(t, admin, "kiwi", nil)

	for _, r := range []struct {
		session *Session
		store   uint
		value   int
	}{
		{u1, apple.ID, 2}, {u2, apple.ID, 3}, {u1, mango.ID, 5},
	} {
		_, err := env.ratingSvc.SubmitRating(r.session, nil, r.store, r.value)
		require.NoError(t, err)
	}

	views, err := env.storeSvc.List(StoreQuery{SortBy: "rating", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{"mango", "apple", "kiwi"}, []string{views[0].Name, views[1].Name, views[2].Name})
	assert.InDelta(t, 2.5, *views[1].Average, 1e-9)
	assert.Len(t, views[1].Ratings, 2)
	assert.Nil(t, views[2].Average)
	assert.NotNil(t, views[2].Ratings)

	views, err = env.storeSvc.List(StoreQuery{SortBy: "rating"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "mango", "kiwi"}, []string{views[0].Name, views[1].Name, views[2].Name})

	views, err = env.storeSvc.List(StoreQuery{Search: "MAN"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, mango.ID, views[0].ID)
}

func TestStoreService_DeleteCascades(t *testing.T) {
	env := setupServiceTest(t)
	_, admin := env.signup(t, "Administrator Person", "admin@example.com", model.RoleAdmin)
	_, customer := env.signup(t, "Regular Customer", "customer@example.com", model.RoleNormalUser)

	store := env.store(t, admin, "bakery", nil)
	_, err := env.ratingSvc.SubmitRating(customer, nil, store.ID, 4)
	require.NoError(t, err)

	require.NoError(t, env.storeSvc.Delete(store.ID))

	count, err := env.ratings.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = env.storeSvc.Get(store.ID)
	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.ErrorIs(t, env.storeSvc.Delete(store.ID), ErrStoreNotFound)
}
