package service

import (
	"context"
	"testing"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/pkg/randname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &model.EmailUser{ID: 1, IsActive: true}

	t.Run("room code retried on conflict", func(t *testing.T) {
		r := &MockRequestRepo{}
		var codes []string
		r.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			codes = append(codes, args.Get(1).(*model.Request).RoomName)
		}).Return(gorm.ErrDuplicatedKey).Once()
		r.On("Create", ctx, mock.Anything).Return(nil).Once()

		req, err := NewRequestService(r).Create(ctx, owner, CreateRequestInput{Title: "t", ContentID: 1, ValueTypeID: 2})
		require.NoError(t, err)
		assert.True(t, randname.IsValid(req.RoomName, randname.RoomCodeLen))
		assert.Equal(t, 1, req.Intervals)
		assert.Equal(t, uint(1), req.OwnerID)
		require.Len(t, codes, 1)
	})

	t.Run("exhausted", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := NewRequestService(r).Create(ctx, owner, CreateRequestInput{})
		assert.ErrorIs(t, err, ErrNameSpaceExhausted)
		r.AssertNumberOfCalls(t, "Create", maxNameAttempts)
	})

	t.Run("dangling reference", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Create", ctx, mock.Anything).Return(gorm.ErrForeignKeyViolated)

		_, err := NewRequestService(r).Create(ctx, owner, CreateRequestInput{ContentID: 99})
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}

func TestRequestService_Ownership(t *testing.T) {
	ctx := context.Background()
	owner := &model.EmailUser{ID: 1, IsActive: true}
	stranger := &model.EmailUser{ID: 2, IsActive: true}
	staff := &model.EmailUser{ID: 3, IsActive: true, IsStaff: true}
	req := &model.Request{ID: 10, OwnerID: 1, RoomName: "AbC123"}

	t.Run("stranger cannot update", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Get", ctx, uint(10)).Return(req, nil)
		title := "x"
		_, err := NewRequestService(r).Update(ctx, stranger, 10, UpdateRequestInput{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
		r.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner updates selected fields", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Get", ctx, uint(10)).Return(req, nil)
		r.On("Update", ctx, uint(10), map[string]any{"title": "x", "intervals": 3}).Return(nil)
		title, intervals := "x", 3
		_, err := NewRequestService(r).Update(ctx, owner, 10, UpdateRequestInput{Title: &title, Intervals: &intervals})
		require.NoError(t, err)
	})

	t.Run("staff adds participants", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Get", ctx, uint(10)).Return(req, nil)
		r.On("AddParticipants", ctx, uint(10), []uint{4, 5}).Return(int64(2), nil)
		n, err := NewRequestService(r).AddParticipants(ctx, staff, 10, []uint{4, 5})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("delete missing", func(t *testing.T) {
		r := &MockRequestRepo{}
		r.On("Get", ctx, uint(11)).Return(nil, gorm.ErrRecordNotFound)
		err := NewRequestService(r).Delete(ctx, owner, 11)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}
