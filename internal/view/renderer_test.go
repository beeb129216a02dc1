package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fastygo/todo/domain"
)

func TestRender_Dashboard(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	list := domain.NewTaskList([]domain.Task{
		{ID: "t1", Title: "Buy milk", Complete: true},
		{ID: "t2", Title: "Write <report>"},
	})

	var out bytes.Buffer
	err = r.Render(&out, "dashboard.html", Data{
		"account":           &domain.Account{Username: "alice"},
		"todo_list":         list.Tasks,
		"total":             list.Total,
		"completed_tasks":   list.Completed,
		"uncompleted_tasks": list.Uncompleted,
		"background_color":  "#336699",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	body := out.String()
	for _, want := range []string{
		"Welcome, alice",
		"Buy milk",
		"Write &lt;report&gt;",
		"/dashboard/update/t1",
		"/dashboard/delete/t2",
		"Total: 2",
		"Completed: 1",
		"Uncompleted: 1",
		"#336699",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestRender_FormErrors(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	var out bytes.Buffer
	err = r.Render(&out, "sign_up.html", Data{
		"username": "al",
		"errors":   map[string]string{"username": "must be between 3 and 20 characters"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "must be between 3 and 20 characters") {
		t.Error("expected field error in output")
	}
	if strings.Contains(out.String(), "no value") {
		t.Error("expected missing values to render empty")
	}
}

func TestRender_AllPagesWithoutData(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	for _, name := range []string{"index.html", "about.html", "log_in.html", "sign_up.html", "current_tasks.html"} {
		var out bytes.Buffer
		if err := r.Render(&out, name, nil); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRender_UnknownView(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	var out bytes.Buffer
	if err := r.Render(&out, "missing.html", nil); err == nil {
		t.Fatal("expected error for unknown view")
	}
	if out.Len() != 0 {
		t.Error("expected nothing written on failure")
	}
}
