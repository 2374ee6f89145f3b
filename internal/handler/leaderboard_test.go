package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Maniok19/Wikitricks/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type leaderboardsResp struct {
	TrickContributors []contributor `json:"trick_contributors"`
	TopicContributors []contributor `json:"topic_contributors"`
	Commenters        []contributor `json:"commenters"`
	ForumParticipants []contributor `json:"forum_participants"`
	TopUpvotedTricks  []topTrick    `json:"top_upvoted_tricks"`
}

func getLeaderboards(t *testing.T, db *gorm.DB) leaderboardsResp {
	t.Helper()
	r := gin.New()
	r.GET("/leaderboards", NewLeaderboardHandler(db).GetLeaderboards)

	req := httptest.NewRequest(http.MethodGet, "/leaderboards", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp leaderboardsResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode leaderboards: %v", err)
	}
	return resp
}

func TestLeaderboardsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	r := gin.New()
	r.GET("/leaderboards", NewLeaderboardHandler(db).GetLeaderboards)

	req := httptest.NewRequest(http.MethodGet, "/leaderboards", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}

	// all five dimensions serialize as [], never null
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"trick_contributors", "topic_contributors", "commenters", "forum_participants", "top_upvoted_tricks"} {
		if string(raw[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, raw[key])
		}
	}
}

func TestLeaderboardsCountsAndOrdering(t *testing.T) {
	db := newTestDB(t)

	alice := seedUser(t, db, "alice@example.com", "alice", false)
	bob := seedUser(t, db, "bob@example.com", "bob", false)
	carol := seedUser(t, db, "carol@example.com", "carol", false)

	// alice posts two tricks, bob one, carol none
	seedTrick(t, db, alice.ID, "Kickflip")
	t2 := seedTrick(t, db, alice.ID, "Heelflip")
	seedTrick(t, db, bob.ID, "Ollie")

	// carol comments once
	if err := db.Create(&models.Comment{Content: "clean", TrickID: t2.ID, UserID: carol.ID}).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	resp := getLeaderboards(t, db)

	if len(resp.TrickContributors) != 2 {
		t.Fatalf("trick_contributors has %d entries, want 2 (zero-activity users must not appear)", len(resp.TrickContributors))
	}
	if resp.TrickContributors[0].UserID != alice.ID || resp.TrickContributors[0].Count != 2 {
		t.Errorf("top trick contributor = %+v, want alice with 2", resp.TrickContributors[0])
	}
	if resp.TrickContributors[1].UserID != bob.ID || resp.TrickContributors[1].Count != 1 {
		t.Errorf("second trick contributor = %+v, want bob with 1", resp.TrickContributors[1])
	}

	if len(resp.Commenters) != 1 || resp.Commenters[0].UserID != carol.ID {
		t.Errorf("commenters = %+v, want only carol", resp.Commenters)
	}
	if len(resp.TopicContributors) != 0 {
		t.Errorf("topic_contributors = %+v, want empty", resp.TopicContributors)
	}
}

func TestLeaderboardsTieBreakOnUserID(t *testing.T) {
	db := newTestDB(t)

	first := seedUser(t, db, "first@example.com", "first", false)
	second := seedUser(t, db, "second@example.com", "second", false)

	// equal counts, the lower user id must rank first
	seedTrick(t, db, second.ID, "Ollie")
	seedTrick(t, db, first.ID, "Kickflip")

	resp := getLeaderboards(t, db)
	if len(resp.TrickContributors) != 2 {
		t.Fatalf("trick_contributors has %d entries, want 2", len(resp.TrickContributors))
	}
	if resp.TrickContributors[0].UserID != first.ID {
		t.Errorf("tie broke on %d first, want lower id %d", resp.TrickContributors[0].UserID, first.ID)
	}
}

func TestLeaderboardsCappedAtTen(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 12; i++ {
		u := seedUser(t, db,
			string(rune('a'+i))+"@example.com",
			"user-"+string(rune('a'+i)), false)
		seedTrick(t, db, u.ID, "Trick "+string(rune('a'+i)))
	}

	resp := getLeaderboards(t, db)
	if len(resp.TrickContributors) != 10 {
		t.Errorf("trick_contributors has %d entries, want cap of 10", len(resp.TrickContributors))
	}
}

func TestLeaderboardsForumParticipants(t *testing.T) {
	db := newTestDB(t)

	alice := seedUser(t, db, "alice@example.com", "alice", false)
	bob := seedUser(t, db, "bob@example.com", "bob", false)

	topic := models.ForumTopic{Title: "Best wheels", UserID: alice.ID}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	// alice replies to her own topic, counts twice across both tables
	replies := []models.ForumReply{
		{Content: "soft ones", TopicID: topic.ID, UserID: alice.ID},
		{Content: "hard ones", TopicID: topic.ID, UserID: bob.ID},
	}
	for i := range replies {
		if err := db.Create(&replies[i]).Error; err != nil {
			t.Fatalf("seed reply: %v", err)
		}
	}

	resp := getLeaderboards(t, db)
	if len(resp.ForumParticipants) != 2 {
		t.Fatalf("forum_participants has %d entries, want 2", len(resp.ForumParticipants))
	}
	if resp.ForumParticipants[0].UserID != alice.ID || resp.ForumParticipants[0].Count != 2 {
		t.Errorf("top participant = %+v, want alice with 2", resp.ForumParticipants[0])
	}
}

func TestLeaderboardsTopUpvotedTricks(t *testing.T) {
	db := newTestDB(t)

	owner := seedUser(t, db, "owner@example.com", "owner", false)
	voter := seedUser(t, db, "voter@example.com", "voter", false)

	plain := seedTrick(t, db, owner.ID, "No votes yet")
	popular := seedTrick(t, db, owner.ID, "Crowd favourite")
	for _, uid := range []uint{owner.ID, voter.ID} {
		if err := db.Create(&models.TrickUpvote{UserID: uid, TrickID: popular.ID}).Error; err != nil {
			t.Fatalf("seed upvote: %v", err)
		}
	}

	resp := getLeaderboards(t, db)
	if len(resp.TopUpvotedTricks) != 2 {
		t.Fatalf("top_upvoted_tricks has %d entries, want 2 (zero-vote tricks still rank)", len(resp.TopUpvotedTricks))
	}
	if resp.TopUpvotedTricks[0].ID != popular.ID || resp.TopUpvotedTricks[0].UpvoteCount != 2 {
		t.Errorf("top trick = %+v, want %q with 2 votes", resp.TopUpvotedTricks[0], popular.Title)
	}
	if resp.TopUpvotedTricks[1].ID != plain.ID || resp.TopUpvotedTricks[1].UpvoteCount != 0 {
		t.Errorf("second trick = %+v, want %q with 0 votes", resp.TopUpvotedTricks[1], plain.Title)
	}
}
