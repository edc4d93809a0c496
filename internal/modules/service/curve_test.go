package service

import (
	"context"
	"testing"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCurveService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("locked by default", func(t *testing.T) {
		r := &MockCurveRepo{}
		r.On("Create", ctx, mock.MatchedBy(func(c *model.Curve) bool { return c.Locked && c.UserID == 7 })).Return(nil)

		c, err := NewCurveService(r).Create(ctx, 7, CreateCurveInput{ContentID: 1, ValueTypeID: 2, Values: datatypes.JSON(`[]`), RoomName: "AbC123"})
		require.NoError(t, err)
		assert.True(t, c.Locked)
	})

	t.Run("explicitly unlocked", func(t *testing.T) {
		r := &MockCurveRepo{}
		r.On("Create", ctx, mock.Anything).Return(nil)
		unlocked := false

		c, err := NewCurveService(r).Create(ctx, 7, CreateCurveInput{Locked: &unlocked})
		require.NoError(t, err)
		assert.False(t, c.Locked)
	})
}

func TestCurveService_UpdateValues(t *testing.T) {
	ctx := context.Background()
	owner := &model.EmailUser{ID: 7, IsActive: true}

	t.Run("locked curve is refused", func(t *testing.T) {
		r := &MockCurveRepo{}
		r.On("Get", ctx, uint(1)).Return(&model.Curve{ID: 1, UserID: 7, Locked: true}, nil)

		_, err := NewCurveService(r).UpdateValues(ctx, owner, 1, datatypes.JSON(`[1]`), "")
		assert.ErrorIs(t, err, ErrCurveLocked)
	})

	t.Run("unlocked curve is rewritten", func(t *testing.T) {
		r := &MockCurveRepo{}
		r.On("Get", ctx, uint(1)).Return(&model.Curve{ID: 1, UserID: 7, Version: "1"}, nil)
		r.On("UpdateValues", ctx, mock.MatchedBy(func(c *model.Curve) bool { return c.Version == "2" })).Return(nil)

		c, err := NewCurveService(r).UpdateValues(ctx, owner, 1, datatypes.JSON(`[1]`), "2")
		require.NoError(t, err)
		assert.Equal(t, "2", c.Version)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		r := &MockCurveRepo{}
		r.On("Get", ctx, uint(1)).Return(&model.Curve{ID: 1, UserID: 8}, nil)

		_, err := NewCurveService(r).SetLocked(ctx, owner, 1, false)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCurveService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	filter := repo.CurveFilter{RoomName: "AbC123"}

	r := &MockCurveRepo{}
	r.On("List", ctx, filter, time.Time{}, uint(0), 3).Return([]*model.Curve{
		{ID: 1, Created: now}, {ID: 2, Created: now}, {ID: 3, Created: now},
	}, nil)

	out, err := NewCurveService(r).List(ctx, ListCurvesInput{Filter: filter, Limit: 2})
	require.NoError(t, err)
	assert.True(t, out.HasMore)
	assert.Len(t, out.Items, 2)

	afterT, afterID, err := paging.DecodeCursor(out.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, uint(2), afterID)
	assert.True(t, afterT.Equal(now))
}
