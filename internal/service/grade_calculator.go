package service

import (
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/formula"
)

// SubjectScore is the mean of the non-empty assessments rounded to one
// decimal, or 0 when every assessment is empty.
func SubjectScore(assessments []models.Assessment) float64 {
	var sum float64
	var n int
	for _, a := range assessments {
		if a.Score != nil {
			sum += *a.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return formula.Round1(sum / float64(n))
}

// RecomputeAverages returns a copy of students with every averageScore set
// to the mean of the non-empty subject scores. Students without subject
// records keep their stored average.
func RecomputeAverages(students []models.Student) []models.Student {
	out := make([]models.Student, len(students))
	copy(out, students)
	for i := range out {
		if len(out[i].Subjects) == 0 {
			continue
		}
		var sum float64
		var n int
		for _, sub := range out[i].Subjects {
			if sub.Score != nil {
				sum += *sub.Score
				n++
			}
		}
		if n == 0 {
			out[i].AverageScore = 0
			continue
		}
		out[i].AverageScore = sum / float64(n)
	}
	return out
}

// columnsFor derives the column order of a class and subject from the first
// student whose record for that subject has assessments.
func columnsFor(students []models.Student, classID, subjectName string) []string {
	for _, st := range students {
		if st.ClassID != classID {
			continue
		}
		idx := st.SubjectIndex(subjectName)
		if idx < 0 || len(st.Subjects[idx].Assessments) == 0 {
			continue
		}
		cols := make([]string, len(st.Subjects[idx].Assessments))
		for i, a := range st.Subjects[idx].Assessments {
			cols[i] = a.Name
		}
		return cols
	}
	return []string{}
}

func assessmentValues(rec models.SubjectRecord) map[string]*float64 {
	values := make(map[string]*float64, len(rec.Assessments))
	for _, a := range rec.Assessments {
		if a.Score != nil {
			v := *a.Score
			values[a.Name] = &v
		} else {
			values[a.Name] = nil
		}
	}
	return values
}
