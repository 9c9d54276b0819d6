package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

func TestCommentBank(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	svc := NewCommentService(factory, nil)
	session := teacherSession("gv@school.vn")

	bank, err := svc.Bank(ctx, session)
	require.NoError(t, err)
	require.Len(t, bank, 4)
	assert.Equal(t, "Giỏi", bank[0].Name)
	assert.Equal(t, "Hạnh kiểm", bank[3].Name)
	assert.Len(t, bank[1].Comments, 5)

	require.NoError(t, svc.Add(ctx, session, models.CommentRequest{Category: "Khá", Text: "  Chăm chỉ phát biểu. "}))
	require.NoError(t, svc.Add(ctx, session, models.CommentRequest{Category: "Khá", Text: "Chăm chỉ phát biểu."}))
	require.NoError(t, svc.Add(ctx, session, models.CommentRequest{Category: "Năng khiếu", Text: "Vẽ đẹp."}))

	kha, err := svc.Category(ctx, session, "Khá")
	require.NoError(t, err)
	require.Len(t, kha.Comments, 6)
	assert.Equal(t, models.CommentEntry{Text: "Chăm chỉ phát biểu.", Custom: true}, kha.Comments[5])

	bank, err = svc.Bank(ctx, session)
	require.NoError(t, err)
	require.Len(t, bank, 5)
	assert.Equal(t, "Năng khiếu", bank[4].Name)

	require.NoError(t, svc.Remove(ctx, session, models.CommentRequest{Category: "Khá", Text: "Chăm chỉ phát biểu."}))
	err = svc.Remove(ctx, session, models.CommentRequest{Category: "Khá", Text: "Có ý thức học tập, nắm vững kiến thức cơ bản."})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	// other teachers keep their own bank
	other, err := svc.Category(ctx, teacherSession("khac@school.vn"), "Năng khiếu")
	require.NoError(t, err)
	assert.Empty(t, other.Comments)
}

func TestSuggestCategory(t *testing.T) {
	assert.Equal(t, "Giỏi", SuggestCategory(8))
	assert.Equal(t, "Khá", SuggestCategory(7.9))
	assert.Equal(t, "Khá", SuggestCategory(6.5))
	assert.Equal(t, "Trung bình", SuggestCategory(6.4))
	assert.Equal(t, "Trung bình", SuggestCategory(2))
}
