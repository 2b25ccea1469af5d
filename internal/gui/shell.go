package gui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"studentrecords/internal/logger"
	"studentrecords/internal/model"
)

const (
	AppID       = "com.studentrecords.manager"
	WindowTitle = "Student Management System"

	WindowWidth  = 600
	WindowHeight = 400

	shellComponent = "GUIShell"
)

// StudentStore is the record store as seen by the GUI.
type StudentStore interface {
	Add(ctx context.Context, student model.Student) error
	Remove(ctx context.Context, rollNumber string) (int, error)
	Search(rollNumber string) (model.Student, bool)
	List() []model.Student
}

// Shell is the tabbed desktop front end. Each button press issues exactly
// one store call on the UI goroutine.
type Shell struct {
	store  StudentStore
	log    logger.Logger
	window fyne.Window
	tabs   *container.AppTabs

	nameEntry  *widget.Entry
	rollEntry  *widget.Entry
	gradeEntry *widget.Entry
	addButton  *widget.Button

	removeEntry  *widget.Entry
	removeButton *widget.Button

	searchEntry  *widget.Entry
	searchButton *widget.Button
	searchResult *widget.Label

	displayArea   *widget.Label
	displayButton *widget.Button

	showInfo  func(message string)
	showError func(err error)
}

func NewShell(app fyne.App, store StudentStore, log logger.Logger) *Shell {
	window := app.NewWindow(WindowTitle)
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	s := &Shell{
		store:  store,
		log:    log,
		window: window,
	}
	s.showInfo = func(message string) {
		dialog.ShowInformation("Message", message, s.window)
	}
	s.showError = func(err error) {
		dialog.ShowError(err, s.window)
	}

	s.tabs = container.NewAppTabs(
		container.NewTabItem("Add Student", s.addTab()),
		container.NewTabItem("Remove Student", s.removeTab()),
		container.NewTabItem("Search Student", s.searchTab()),
		container.NewTabItem("Display All Students", s.displayTab()),
	)
	window.SetContent(s.tabs)

	log.Info(shellComponent, "window created", map[string]interface{}{
		"width":  WindowWidth,
		"height": WindowHeight,
	})
	return s
}

func (s *Shell) Window() fyne.Window {
	return s.window
}

// ShowAndRun shows the window and blocks until the application quits.
func (s *Shell) ShowAndRun() {
	s.window.SetMaster()
	s.window.ShowAndRun()
}

// ReportLoadError tells the user the stored records could not be read and
// the session started empty.
func (s *Shell) ReportLoadError(err error) {
	if err == nil {
		return
	}
	s.showError(errors.Wrap(err, "stored student data could not be loaded, starting with an empty list"))
}

func (s *Shell) addTab() fyne.CanvasObject {
	s.nameEntry = widget.NewEntry()
	s.rollEntry = widget.NewEntry()
	s.gradeEntry = widget.NewEntry()
	s.addButton = widget.NewButton("Add Student", s.onAdd)

	return container.NewGridWithColumns(2,
		widget.NewLabel("Name:"), s.nameEntry,
		widget.NewLabel("Roll Number:"), s.rollEntry,
		widget.NewLabel("Grade:"), s.gradeEntry,
		widget.NewLabel(""), s.addButton,
	)
}

func (s *Shell) removeTab() fyne.CanvasObject {
	s.removeEntry = widget.NewEntry()
	s.removeButton = widget.NewButton("Remove Student", s.onRemove)

	return container.NewBorder(
		widget.NewLabel("Roll Number:"),
		s.removeButton,
		nil, nil,
		container.NewVBox(s.removeEntry),
	)
}

func (s *Shell) searchTab() fyne.CanvasObject {
	s.searchEntry = widget.NewEntry()
	s.searchButton = widget.NewButton("Search Student", s.onSearch)
	s.searchResult = widget.NewLabel("")
	s.searchResult.Wrapping = fyne.TextWrapWord

	return container.NewBorder(
		widget.NewLabel("Roll Number:"),
		s.searchButton,
		nil, nil,
		container.NewVBox(s.searchEntry, container.NewVScroll(s.searchResult)),
	)
}

func (s *Shell) displayTab() fyne.CanvasObject {
	s.displayArea = widget.NewLabel("")
	s.displayButton = widget.NewButton("Display All Students", s.onDisplay)

	return container.NewBorder(
		nil,
		s.displayButton,
		nil, nil,
		container.NewScroll(s.displayArea),
	)
}

func (s *Shell) onAdd() {
	student := model.Student{
		Name:       s.nameEntry.Text,
		RollNumber: s.rollEntry.Text,
		Grade:      s.gradeEntry.Text,
	}
	if err := student.Validate(); err != nil {
		s.showError(errors.New(model.MsgFieldsRequired))
		return
	}

	if err := s.store.Add(context.Background(), student); err != nil {
		s.log.Error(shellComponent, "add failed", err, map[string]interface{}{"action": "add"})
		s.showError(err)
		return
	}

	s.showInfo(model.MsgAdded)
	s.nameEntry.SetText("")
	s.rollEntry.SetText("")
	s.gradeEntry.SetText("")
}

func (s *Shell) onRemove() {
	if _, err := s.store.Remove(context.Background(), s.removeEntry.Text); err != nil {
		s.log.Error(shellComponent, "remove failed", err, map[string]interface{}{"action": "remove"})
		s.showError(err)
		return
	}

	s.showInfo(model.MsgRemoved)
	s.removeEntry.SetText("")
}

func (s *Shell) onSearch() {
	student, ok := s.store.Search(s.searchEntry.Text)
	if !ok {
		s.searchResult.SetText(model.MsgNotFound)
		return
	}
	s.searchResult.SetText(student.String())
}

func (s *Shell) onDisplay() {
	s.displayArea.SetText(model.FormatList(s.store.List()))
}
