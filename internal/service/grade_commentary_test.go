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

func scoresOf(pairs ...interface{}) []namedScore {
	out := make([]namedScore, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, namedScore{name: pairs[i].(string), score: pairs[i+1].(float64)})
	}
	return out
}

var mathSubject = models.Subject{ID: "sub-math", Name: "Toán", SchoolID: "school1"}

func TestComposeCommentaryWithoutScores(t *testing.T) {
	c := composeCommentary("class1", mathSubject, nil)
	assert.Equal(t, noCommentaryData, c.Text)
	assert.Nil(t, c.PassRate)
	assert.Zero(t, c.Graded)
	assert.Empty(t, c.Recommendations)
}

func TestComposeCommentaryStrongClassWithOneFailure(t *testing.T) {
	scores := scoresOf(
		"An", 9.0, "Bình", 8.5, "Chi", 8.0, "Dũng", 9.5,
		"Giang", 6.0, "Hà", 7.0, "Khoa", 5.0, "Lan", 6.5, "Minh", 7.5,
		"Nga", 4.0,
	)
	c := composeCommentary("class1", mathSubject, scores)

	require.NotNil(t, c.PassRate)
	assert.Equal(t, 90.0, *c.PassRate)
	assert.Contains(t, c.Overview, "rất ấn tượng")
	assert.Contains(t, c.Overview, "90.0%")
	assert.Contains(t, c.Overview, "tỉ trọng lớn")
	assert.Equal(t, []string{"Nga"}, c.Struggling)
	assert.Equal(t, []string{"An", "Bình", "Chi", "Dũng"}, c.Excellent)
	assert.Contains(t, c.FocusGroup, "1 học sinh (chiếm 10.0%)")
	assert.Contains(t, c.FocusGroup, "Nga")
	assert.Equal(t, remedialAdvice, c.Recommendations)

	assert.Contains(t, c.Text, "[PHÂN TÍCH TỔNG QUAN]\n"+c.Overview)
	assert.Contains(t, c.Text, "[HỌC SINH TIÊU BIỂU]\nCác học sinh có thành tích tốt: An, Bình, Chi, Dũng.")
	assert.Contains(t, c.Text, "1. "+remedialAdvice[0]+"\n2. "+remedialAdvice[1])
	assert.Contains(t, c.Text, commentaryFooter)
}

func TestComposeCommentaryNoFailures(t *testing.T) {
	c := composeCommentary("class1", mathSubject, scoresOf("An", 6.0, "Bình", 7.0))

	assert.Equal(t, 100.0, *c.PassRate)
	assert.Contains(t, c.Overview, "Đa số học sinh nắm được kiến thức cơ bản")
	assert.Contains(t, c.FocusGroup, "Lớp không có học sinh yếu kém")
	assert.Empty(t, c.Struggling)
	assert.Empty(t, c.Excellent)
	assert.Equal(t, extensionAdvice, c.Recommendations)
	assert.NotContains(t, c.Text, "[HỌC SINH TIÊU BIỂU]")
}

func TestComposeCommentaryPassRateBands(t *testing.T) {
	steady := composeCommentary("class1", mathSubject, scoresOf("An", 6.0, "Bình", 7.0, "Chi", 5.5, "Dũng", 2.0))
	assert.Equal(t, 75.0, *steady.PassRate)
	assert.Contains(t, steady.Overview, "ở mức khá và ổn định")

	weak := composeCommentary("class1", mathSubject, scoresOf("An", 6.0, "Bình", 3.0, "Chi", 4.9))
	assert.Equal(t, 33.3, *weak.PassRate)
	assert.Contains(t, weak.Overview, "gặp nhiều khó khăn")
	assert.Contains(t, weak.Overview, "(66.7%)")
	assert.Equal(t, []string{"Bình", "Chi"}, weak.Struggling)
}

func TestGradeServiceCommentaryUsesDesignatedColumn(t *testing.T) {
	ctx := context.Background()
	svc, session, fx, _ := newGradeFixture(t, "A", "B")

	_, err := svc.SaveScores(ctx, session, models.SaveScoresRequest{
		ClassID: fx.class.ID, SubjectID: fx.subject.ID,
		Entries: []models.ScoreEntry{
			{StudentID: "st-An", Column: "A", Score: score(9)},
			{StudentID: "st-An", Column: "B", Score: score(2)},
			{StudentID: "st-Bình", Column: "A", Score: score(8)},
			{StudentID: "st-Bình", Column: "B", Score: score(8)},
		},
	})
	require.NoError(t, err)

	c, err := svc.Commentary(ctx, session, fx.class.ID, fx.subject.ID)
	require.NoError(t, err)
	// subject scores: An 5.5, Bình 8
	assert.Equal(t, 2, c.Graded)
	assert.Equal(t, []string{"Bình"}, c.Excellent)
	assert.Empty(t, c.Struggling)

	_, err = svc.ToggleDesignatedColumn(ctx, session, fx.subject.ID, "B")
	require.NoError(t, err)
	c, err = svc.Commentary(ctx, session, fx.class.ID, fx.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"An"}, c.Struggling)
	assert.Equal(t, 50.0, *c.PassRate)

	_, err = svc.Commentary(ctx, session, "missing", fx.subject.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
