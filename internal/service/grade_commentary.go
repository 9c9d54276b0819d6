package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/formula"
)

const (
	passThreshold      = 5.0
	excellentThreshold = 8.0

	noCommentaryData = "Chưa có dữ liệu để phân tích."
	commentaryFooter = "(Dữ liệu được phân tích tự động dựa trên phổ điểm hiện tại)"
)

// Recommendations for a class with failing students, then for one without.
var (
	remedialAdvice = []string{
		"Tổ chức mô hình 'Đôi bạn cùng tiến', sắp xếp học sinh Giỏi hỗ trợ trực tiếp các bạn còn yếu.",
		"Trao đổi trực tiếp với phụ huynh của nhóm học sinh yếu để phối hợp đôn đốc việc học tại nhà.",
		"Dành thời gian phụ đạo riêng cho nhóm học sinh hổng kiến thức căn bản vào cuối buổi hoặc các tiết tự chọn.",
	}
	extensionAdvice = []string{
		"Tăng cường bài tập luyện tập phù hợp với từng nhóm trình độ (Differentiated Instruction).",
		"Đổi mới phương pháp giảng dạy bằng các hoạt động trực quan hoặc trò chơi học tập để tăng hứng thú.",
		"Thiết kế thêm các bài tập nâng cao hoặc dự án thực tế để kích thích tư duy sáng tạo của học sinh khá giỏi.",
	}
)

// composeCommentary reads the band counts of scores. Percentages are taken
// over graded students only.
func composeCommentary(classID string, subject models.Subject, scores []namedScore) *models.GradeCommentary {
	c := &models.GradeCommentary{
		ClassID:         classID,
		SubjectID:       subject.ID,
		Graded:          len(scores),
		Struggling:      []string{},
		Excellent:       []string{},
		Recommendations: []string{},
	}
	if len(scores) == 0 {
		c.Overview = noCommentaryData
		c.Text = noCommentaryData
		return c
	}

	failing := 0
	for _, ns := range scores {
		switch {
		case ns.score < passThreshold:
			failing++
			c.Struggling = append(c.Struggling, ns.name)
		case ns.score >= excellentThreshold:
			c.Excellent = append(c.Excellent, ns.name)
		}
	}
	total := float64(len(scores))
	pass := formula.Round1(float64(len(scores)-failing) / total * 100)
	excellentPct := formula.Round1(float64(len(c.Excellent)) / total * 100)
	c.PassRate = floatPtr(pass)

	switch {
	case pass >= 90:
		c.Overview = fmt.Sprintf("Lớp có kết quả học tập môn %s rất ấn tượng với tỉ lệ đạt trên trung bình là %.1f%%. ", subject.Name, pass)
		if excellentPct > 30 {
			c.Overview += "Số lượng học sinh giỏi chiếm tỉ trọng lớn, cho thấy lớp có nền tảng kiến thức vững chắc và tinh thần tự giác cao."
		} else {
			c.Overview += "Đa số học sinh nắm được kiến thức cơ bản, tuy nhiên cần bồi dưỡng thêm để tăng tỉ lệ học sinh xuất sắc."
		}
	case pass >= 70:
		c.Overview = fmt.Sprintf("Kết quả học tập môn %s ở mức khá và ổn định. Tỉ lệ đạt yêu cầu là %.1f%%. Nhìn chung học sinh có cố gắng nhưng mức độ đồng đều chưa cao.", subject.Name, pass)
	default:
		c.Overview = fmt.Sprintf("Tình hình học tập môn %s hiện đang gặp nhiều khó khăn. Tỉ lệ học sinh dưới trung bình còn cao (%.1f%%). Cần có sự can thiệp và hỗ trợ kịp thời để cải thiện chất lượng.", subject.Name, formula.Round1(100-pass))
	}

	if failing > 0 {
		c.FocusGroup = fmt.Sprintf("Cần lưu ý đặc biệt đến nhóm %d học sinh (chiếm %.1f%%) có kết quả chưa đạt. Học sinh cần cải thiện: %s. Cần được kiểm tra để xác định lỗ hổng kiến thức ngay lập tức.",
			failing, formula.Round1(float64(failing)/total*100), strings.Join(c.Struggling, ", "))
		c.Recommendations = append(c.Recommendations, remedialAdvice...)
	} else {
		c.FocusGroup = "Lớp không có học sinh yếu kém. Trọng tâm nên chuyển sang việc mở rộng kiến thức và đào sâu các chủ đề khó cho nhóm học sinh Khá/Giỏi."
		c.Recommendations = append(c.Recommendations, extensionAdvice...)
	}

	var b strings.Builder
	b.WriteString("[PHÂN TÍCH TỔNG QUAN]\n")
	b.WriteString(c.Overview)
	b.WriteString("\n\n[ĐỐI TƯỢNG CẦN CHÚ Ý]\n")
	b.WriteString(c.FocusGroup)
	if len(c.Excellent) > 0 {
		fmt.Fprintf(&b, "\n\n[HỌC SINH TIÊU BIỂU]\nCác học sinh có thành tích tốt: %s. Cần phát huy và khuyến khích để làm gương cho lớp.", strings.Join(c.Excellent, ", "))
	}
	b.WriteString("\n\n[KIẾN NGHỊ SƯ PHẠM]\n")
	for i, advice := range c.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, advice)
	}
	b.WriteString("\n")
	b.WriteString(commentaryFooter)
	c.Text = b.String()
	return c
}
