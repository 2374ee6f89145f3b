package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Maniok19/Wikitricks/internal/middleware"
	"github.com/Maniok19/Wikitricks/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func adminRouter(db *gorm.DB) *gin.Engine {
	h := NewAdminHandler(db, 20)
	r := gin.New()
	admin := r.Group("/admin", middleware.AdminRequired(testSecret, db))
	admin.GET("/dashboard", h.Dashboard)
	admin.DELETE("/tricks/:id", h.DeleteTrick)
	admin.DELETE("/comments/:id", h.DeleteComment)
	admin.DELETE("/forum/topics/:id", h.DeleteTopic)
	admin.DELETE("/forum/replies/:id", h.DeleteReply)
	admin.POST("/users/:id/toggle-admin", h.ToggleAdmin)
	admin.GET("/logs", h.ListLogs)
	admin.GET("/export/tricks.csv", h.ExportTricksCSV)
	return r
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	regular := seedUser(t, db, "regular@example.com", "regular", false)

	code, resp := doJSON(t, r, http.MethodGet, "/admin/dashboard", authToken(t, regular.ID), nil)
	if code != http.StatusForbidden {
		t.Fatalf("got %d, want 403 (%v)", code, resp)
	}
	if resp["error"] != "Admin access required" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestToggleAdmin(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)
	target := seedUser(t, db, "target@example.com", "target", false)
	token := authToken(t, admin.ID)
	path := fmt.Sprintf("/admin/users/%d/toggle-admin", target.ID)

	code, resp := doJSON(t, r, http.MethodPost, path, token, nil)
	if code != http.StatusOK {
		t.Fatalf("grant: got %d (%v)", code, resp)
	}
	if resp["is_admin"] != true {
		t.Errorf("is_admin = %v, want true", resp["is_admin"])
	}

	code, resp = doJSON(t, r, http.MethodPost, path, token, nil)
	if code != http.StatusOK || resp["is_admin"] != false {
		t.Fatalf("revoke: code=%d is_admin=%v", code, resp["is_admin"])
	}

	var reloaded models.User
	if err := db.First(&reloaded, target.ID).Error; err != nil {
		t.Fatalf("reload target: %v", err)
	}
	if reloaded.IsAdmin {
		t.Error("target still admin after revoke")
	}

	code, resp = doJSON(t, r, http.MethodPost, "/admin/users/999/toggle-admin", token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown user: got %d (%v)", code, resp)
	}
}

func TestAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)
	skater := seedUser(t, db, "skater@example.com", "skater", false)
	trick := seedTrick(t, db, skater.ID, "Kickflip")
	if err := db.Create(&models.Comment{Content: "nice", TrickID: trick.ID, UserID: admin.ID}).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	code, resp := doJSON(t, r, http.MethodGet, "/admin/dashboard", authToken(t, admin.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("got %d (%v)", code, resp)
	}

	stats, _ := resp["stats"].(map[string]any)
	if stats["total_users"] != float64(2) {
		t.Errorf("total_users = %v, want 2", stats["total_users"])
	}
	if stats["total_tricks"] != float64(1) || stats["total_comments"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}

	recent, _ := resp["recent_activity"].(map[string]any)
	tricks, _ := recent["tricks"].([]any)
	if len(tricks) != 1 {
		t.Errorf("recent tricks = %v", recent["tricks"])
	}
}

func TestAdminDeleteTrickCascades(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)
	skater := seedUser(t, db, "skater@example.com", "skater", false)
	trick := seedTrick(t, db, skater.ID, "Kickflip")
	if err := db.Create(&models.Comment{Content: "nice", TrickID: trick.ID, UserID: admin.ID}).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	if err := db.Create(&models.TrickUpvote{UserID: admin.ID, TrickID: trick.ID}).Error; err != nil {
		t.Fatalf("seed upvote: %v", err)
	}

	code, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/admin/tricks/%d", trick.ID), authToken(t, admin.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("got %d (%v)", code, resp)
	}

	for name, model := range map[string]any{
		"tricks":        &models.Trick{},
		"comments":      &models.Comment{},
		"trick_upvotes": &models.TrickUpvote{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("%s left %d rows after cascade", name, count)
		}
	}
}

func TestAdminDeleteTopicCascades(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)
	author := seedUser(t, db, "author@example.com", "author", false)

	topic := models.ForumTopic{Title: "Old thread", UserID: author.ID}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	reply := models.ForumReply{Content: "bump", TopicID: topic.ID, UserID: author.ID}
	if err := db.Create(&reply).Error; err != nil {
		t.Fatalf("seed reply: %v", err)
	}
	if err := db.Create(&models.ReplyUpvote{UserID: admin.ID, ReplyID: reply.ID}).Error; err != nil {
		t.Fatalf("seed reply upvote: %v", err)
	}

	code, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/admin/forum/topics/%d", topic.ID), authToken(t, admin.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("got %d (%v)", code, resp)
	}

	for name, model := range map[string]any{
		"forum_topics":  &models.ForumTopic{},
		"forum_replies": &models.ForumReply{},
		"reply_upvotes": &models.ReplyUpvote{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("%s left %d rows after cascade", name, count)
		}
	}
}

func TestAdminListLogs(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)

	for i := 0; i < 3; i++ {
		entry := models.AuditLog{
			UserID: &admin.ID,
			Path:   fmt.Sprintf("/tricks/%d/upvote", i+1),
			Method: "POST",
			IP:     "127.0.0.1",
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	code, resp := doJSON(t, r, http.MethodGet, "/admin/logs?page=1&page_size=2", authToken(t, admin.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("got %d (%v)", code, resp)
	}
	if resp["total"] != float64(3) {
		t.Errorf("total = %v, want 3", resp["total"])
	}
	items, _ := resp["items"].([]any)
	if len(items) != 2 {
		t.Errorf("page holds %d items, want 2", len(items))
	}
}

func TestAdminExportTricksCSV(t *testing.T) {
	db := newTestDB(t)
	r := adminRouter(db)
	admin := seedUser(t, db, "admin@example.com", "admin", true)
	seedTrick(t, db, admin.ID, "Kickflip")

	req := httptest.NewRequest(http.MethodGet, "/admin/export/tricks.csv", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, admin.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want header + 1 row: %q", len(lines), w.Body.String())
	}
	if !strings.HasPrefix(lines[0], "ID,Title,Difficulty,Author,Upvotes,Created") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Kickflip") || !strings.Contains(lines[1], "admin") {
		t.Errorf("row = %q", lines[1])
	}
}
