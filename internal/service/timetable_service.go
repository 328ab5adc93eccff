package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/config"
	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// 周一为 jour = 0
var dayNames = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

const icsProductID = "-//EduSen//Emploi du temps//FR"

// TimetableService 课表业务接口
type TimetableService interface {
	Grid(ctx context.Context, req *dto.TimetableRequest) (*dto.TimetableResponse, error)
	// ExportICS 每门课程一个按周重复的事件，直到学期结束
	ExportICS(ctx context.Context, req *dto.TimetableRequest) ([]byte, string, error)
	ExportXLSX(ctx context.Context, req *dto.TimetableRequest) (*bytes.Buffer, string, error)
}

type timetableService struct {
	grid   *config.TimetableConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(grid *config.TimetableConfig, repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{grid: grid, repo: repo, logger: logger}
}

// selection 一次课表查询的结果
type selection struct {
	term    *model.Term
	title   string
	courses []model.Course
}

// ────────────────────── Grid ──────────────────────

func (s *timetableService) Grid(ctx context.Context, req *dto.TimetableRequest) (*dto.TimetableResponse, error) {
	sel, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.TimetableResponse{
		TermID: sel.term.TermID,
		Titre:  sel.title,
		Jours:  make([]dto.TimetableDay, 0, s.grid.DaysPerWeek),
	}
	for d := 0; d < s.grid.DaysPerWeek; d++ {
		day := dto.TimetableDay{
			Jour:     d,
			Nom:      dayName(d),
			Creneaux: make([]dto.TimetableSlot, 0, s.grid.SlotsPerDay),
		}
		for i := 0; i < s.grid.SlotsPerDay; i++ {
			day.Creneaux = append(day.Creneaux, dto.TimetableSlot{
				Index: i,
				Debut: clock(s.slotStart(i)),
				Fin:   clock(s.slotStart(i + 1)),
				Cours: []dto.CourseResponse{},
			})
		}
		resp.Jours = append(resp.Jours, day)
	}

	// 跨多节的课程出现在其覆盖的每一节
	for i := range sel.courses {
		c := &sel.courses[i]
		if c.Jour < 0 || c.Jour >= len(resp.Jours) {
			continue
		}
		slots := resp.Jours[c.Jour].Creneaux
		for k := c.HeureDebut; k < c.End() && k < len(slots); k++ {
			slots[k].Cours = append(slots[k].Cours, toCourseResponse(c))
		}
	}
	return resp, nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *timetableService) ExportICS(ctx context.Context, req *dto.TimetableRequest) ([]byte, string, error) {
	sel, err := s.load(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(sel.title)

	now := time.Now().UTC()
	until := endOfDay(sel.term.EndDate)
	for i := range sel.courses {
		c := &sel.courses[i]
		first, ok := firstOccurrence(sel.term.StartDate, sel.term.EndDate, c.Jour)
		if !ok {
			continue
		}
		start := first.Add(s.slotStart(c.HeureDebut))
		end := first.Add(s.slotStart(c.End()))

		evt := cal.AddEvent(c.CourseID + "@edusen")
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(courseSummary(c))
		evt.SetLocation(c.Salle)
		if c.Teacher != nil {
			evt.SetDescription("Professeur : " + c.Teacher.FullName())
		}
		evt.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;UNTIL="+until.UTC().Format("20060102T150405Z"))
	}

	filename := fmt.Sprintf("emploi_du_temps_%s.ics", fileSafe(sel.title))
	return []byte(cal.Serialize()), filename, nil
}

// ────────────────────── ExportXLSX ──────────────────────

func (s *timetableService) ExportXLSX(ctx context.Context, req *dto.TimetableRequest) (*bytes.Buffer, string, error) {
	sel, err := s.load(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Emploi du temps"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	lastCol := colName(s.grid.DaysPerWeek)
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", sel.title, sel.term.Nom))
	_ = f.MergeCell(sheet, "A1", cell(lastCol, 1))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A2", "Horaire")
	for d := 0; d < s.grid.DaysPerWeek; d++ {
		_ = f.SetCellValue(sheet, cell(colName(d+1), 2), dayName(d))
	}
	_ = f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)
	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", lastCol, 24)

	// (jour, 节) → 单元格文本
	texts := make(map[[2]int][]string)
	for i := range sel.courses {
		c := &sel.courses[i]
		for k := c.HeureDebut; k < c.End(); k++ {
			key := [2]int{c.Jour, k}
			texts[key] = append(texts[key], cellText(c, req))
		}
	}

	for i := 0; i < s.grid.SlotsPerDay; i++ {
		row := 3 + i
		_ = f.SetCellValue(sheet, cell("A", row), clock(s.slotStart(i))+"-"+clock(s.slotStart(i+1)))
		for d := 0; d < s.grid.DaysPerWeek; d++ {
			if t, ok := texts[[2]int{d, i}]; ok {
				_ = f.SetCellValue(sheet, cell(colName(d+1), row), strings.Join(t, "\n"))
			}
		}
	}
	_ = f.SetCellStyle(sheet, "B3", cell(lastCol, 2+s.grid.SlotsPerDay), cellStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("emploi_du_temps_%s.xlsx", fileSafe(sel.title))
	return buf, filename, nil
}

// ── 内部方法 ──

func (s *timetableService) load(ctx context.Context, req *dto.TimetableRequest) (*selection, error) {
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}

	filter := repository.CourseFilter{TermID: term.TermID}
	var title string
	switch {
	case req.ClasseID != "":
		class, err := s.repo.Class.GetByID(ctx, req.ClasseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			s.logger.Error("查询班级失败", zap.String("id", req.ClasseID), zap.Error(err))
			return nil, err
		}
		filter.ClassID, title = class.ClassID, class.Nom
	case req.ProfesseurID != "":
		teacher, err := s.repo.Teacher.GetByID(ctx, req.ProfesseurID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeacherNotFound
			}
			s.logger.Error("查询教师失败", zap.String("id", req.ProfesseurID), zap.Error(err))
			return nil, err
		}
		filter.TeacherID, title = teacher.TeacherID, teacher.FullName()
	default:
		filter.Salle, title = req.Salle, "Salle "+req.Salle
	}

	courses, err := s.repo.Course.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("term_id", term.TermID), zap.Error(err))
		return nil, err
	}
	return &selection{term: term, title: title, courses: courses}, nil
}

// slotStart 第 i 节相对当天 0 点的开始时间
func (s *timetableService) slotStart(i int) time.Duration {
	return slotOffset(s.grid, i)
}

func slotOffset(grid *config.TimetableConfig, i int) time.Duration {
	return time.Duration(grid.FirstSlotHour)*time.Hour + time.Duration(i*grid.SlotMinutes)*time.Minute
}

// slotLabel 例如 "Lundi 08:00-10:00"
func slotLabel(grid *config.TimetableConfig, c *model.Course) string {
	return fmt.Sprintf("%s %s-%s", dayName(c.Jour), clock(slotOffset(grid, c.HeureDebut)), clock(slotOffset(grid, c.End())))
}

// firstOccurrence 学期内第一个与 jour 对应的日期（当天 0 点）
func firstOccurrence(start, end time.Time, jour int) (time.Time, bool) {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
	target := time.Weekday((jour + 1) % 7)
	offset := (int(target) - int(day.Weekday()) + 7) % 7
	first := day.AddDate(0, 0, offset)
	if first.After(endOfDay(end)) {
		return time.Time{}, false
	}
	return first, true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.Local)
}

func dayName(jour int) string {
	if jour < 0 || jour >= len(dayNames) {
		return fmt.Sprintf("J%d", jour)
	}
	return dayNames[jour]
}

func clock(d time.Duration) string {
	m := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func courseSummary(c *model.Course) string {
	parts := make([]string, 0, 2)
	if c.Subject != nil {
		parts = append(parts, c.Subject.Nom)
	}
	if c.Class != nil {
		parts = append(parts, c.Class.Nom)
	}
	if len(parts) == 0 {
		return "Cours"
	}
	return strings.Join(parts, " - ")
}

// cellText 省略与查询维度重复的信息
func cellText(c *model.Course, req *dto.TimetableRequest) string {
	lines := make([]string, 0, 3)
	if c.Subject != nil {
		lines = append(lines, c.Subject.Nom)
	}
	if req.ClasseID == "" && c.Class != nil {
		lines = append(lines, c.Class.Nom)
	}
	if req.ProfesseurID == "" && c.Teacher != nil {
		lines = append(lines, c.Teacher.FullName())
	}
	if req.Salle == "" {
		lines = append(lines, c.Salle)
	}
	return strings.Join(lines, " / ")
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '"', '\'':
			return '_'
		}
		return r
	}, s)
}
