package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// Default comment categories, in display order.
var commentCategories = []string{"Giỏi", "Khá", "Trung bình", "Hạnh kiểm"}

var defaultComments = map[string][]string{
	"Giỏi": {
		"Tiếp thu bài nhanh, có tố chất thông minh.",
		"Thông minh, sáng tạo, hoàn thành tốt các bài tập.",
		"Ý thức học tập rất tốt, gương mẫu trong các hoạt động.",
		"Có kiến thức vững chắc, đạt thành tích cao trong học tập.",
		"Tích cực xây dựng bài, có tư duy logic tốt.",
	},
	"Khá": {
		"Có ý thức học tập, nắm vững kiến thức cơ bản.",
		"Tiếp thu được bài, cần chú ý rèn luyện thêm chữ viết.",
		"Học bài và làm bài đầy đủ, tích cực tham gia hoạt động lớp.",
		"Có nhiều cố gắng trong học tập, đôi lúc còn thiếu tập trung.",
		"Kết quả học tập khá, cần phát huy hơn nữa năng lực cá nhân.",
	},
	"Trung bình": {
		"Nắm được kiến thức cơ bản nhưng chưa sâu.",
		"Cần cố gắng nhiều hơn nữa trong kỳ học tới.",
		"Đôi lúc còn quên làm bài tập về nhà, cần chú ý hơn.",
		"Tiếp thu bài còn chậm, cần dành thêm thời gian tự học.",
		"Cần sự kèm cặp sát sao hơn từ phía gia đình.",
	},
	"Hạnh kiểm": {
		"Lễ phép, ngoan ngoãn, hòa đồng với bạn bè.",
		"Chấp hành tốt nội quy trường lớp.",
		"Năng nổ, nhiệt tình trong các hoạt động phong trào.",
		"Cần chú ý hơn về tác phong và kỷ luật.",
		"Có tinh thần tương thân tương ái, hay giúp đỡ bạn bè.",
	},
}

// CommentService serves the report-card comment bank.
type CommentService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
}

// NewCommentService constructs CommentService.
func NewCommentService(workspaces workspaceProvider, validate *validator.Validate) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	return &CommentService{workspaces: workspaces, validator: validate}
}

// Bank returns every category with defaults followed by the caller's own
// entries. Custom categories come after the defaults.
func (s *CommentService) Bank(ctx context.Context, session *models.SessionTeacher) ([]models.CommentCategory, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	custom := s.workspaces.For(session).Settings.CustomComments(ctx)

	names := append([]string(nil), commentCategories...)
	for name := range custom {
		if _, ok := defaultComments[name]; !ok {
			names = append(names, name)
		}
	}
	sortTail(names, len(commentCategories))

	out := make([]models.CommentCategory, 0, len(names))
	for _, name := range names {
		cat := models.CommentCategory{Name: name, Comments: []models.CommentEntry{}}
		for _, text := range defaultComments[name] {
			cat.Comments = append(cat.Comments, models.CommentEntry{Text: text})
		}
		for _, text := range custom[name] {
			cat.Comments = append(cat.Comments, models.CommentEntry{Text: text, Custom: true})
		}
		out = append(out, cat)
	}
	return out, nil
}

// Category returns the suggestions of one category.
func (s *CommentService) Category(ctx context.Context, session *models.SessionTeacher, name string) (*models.CommentCategory, error) {
	bank, err := s.Bank(ctx, session)
	if err != nil {
		return nil, err
	}
	for i := range bank {
		if bank[i].Name == name {
			return &bank[i], nil
		}
	}
	return &models.CommentCategory{Name: name, Comments: []models.CommentEntry{}}, nil
}

// Add stores a custom comment; an existing entry is kept once.
func (s *CommentService) Add(ctx context.Context, session *models.SessionTeacher, req models.CommentRequest) error {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "category and text are required")
	}
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		custom := ws.Settings.CustomComments(ctx)
		for _, existing := range custom[req.Category] {
			if existing == req.Text {
				return nil
			}
		}
		custom[req.Category] = append(custom[req.Category], req.Text)
		ws.Settings.SaveCustomComments(ctx, custom)
		return nil
	})
}

// Remove deletes a custom comment. Default comments cannot be removed.
func (s *CommentService) Remove(ctx context.Context, session *models.SessionTeacher, req models.CommentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "category and text are required")
	}
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		custom := ws.Settings.CustomComments(ctx)
		entries, ok := custom[req.Category]
		if !ok {
			return appErrors.NotFound("comment")
		}
		kept := entries[:0]
		for _, text := range entries {
			if text != req.Text {
				kept = append(kept, text)
			}
		}
		if len(kept) == len(entries) {
			return appErrors.NotFound("comment")
		}
		custom[req.Category] = kept
		ws.Settings.SaveCustomComments(ctx, custom)
		return nil
	})
}

// SuggestCategory maps an average score to its comment category.
func SuggestCategory(average float64) string {
	switch {
	case average >= 8:
		return "Giỏi"
	case average >= 6.5:
		return "Khá"
	default:
		return "Trung bình"
	}
}

func sortTail(names []string, from int) {
	tail := names[from:]
	for i := 1; i < len(tail); i++ {
		for j := i; j > 0 && tail[j] < tail[j-1]; j-- {
			tail[j], tail[j-1] = tail[j-1], tail[j]
		}
	}
}
