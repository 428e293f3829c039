package repositories

import (
	"os"
	"time"

	"task-manager/backend/logging"
	"task-manager/backend/models"

	"github.com/gocql/gocql"
)

// ActivityRepo persists the audit/activity feed in Cassandra. Records are
// fanned out per user (actor and target each get a row) so feed reads stay
// single-partition; a separate team table holds the global timeline.
type ActivityRepo struct {
	session *gocql.Session
}

func NewActivityRepo() (*ActivityRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: Cassandra connection failed: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS activity
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "activity"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_CONNECT_FAILED, Description: Failed to connect to activity keyspace: %v", err)
		return nil, err
	}

	logging.Logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra activity keyspace.")
	return &ActivityRepo{session: session}, nil
}

func (ar *ActivityRepo) CloseSession() {
	ar.session.Close()
	logging.Logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra session closed.")
}

// CreateTables sets up the per-user feed and the team timeline.
func (ar *ActivityRepo) CreateTables() {
	err := ar.session.Query(
		`CREATE TABLE IF NOT EXISTS activity_by_user (
			user_id TEXT,
			id UUID,
			type TEXT,
			actor_id TEXT,
			task_id TEXT,
			target_id TEXT,
			task_title TEXT,
			old_value TEXT,
			new_value TEXT,
			is_read BOOLEAN,
			created_at TIMESTAMP,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create activity_by_user table: %v", err)
	}

	err = ar.session.Query(
		`CREATE TABLE IF NOT EXISTS activity_team (
			feed TEXT,
			id UUID,
			type TEXT,
			actor_id TEXT,
			task_id TEXT,
			target_id TEXT,
			task_title TEXT,
			old_value TEXT,
			new_value TEXT,
			created_at TIMESTAMP,
			PRIMARY KEY ((feed), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create activity_team table: %v", err)
	}
}

// Insert writes one activity: a row under the actor's feed, a row under
// the target's feed when a target exists, and a row on the team timeline.
func (ar *ActivityRepo) Insert(activity *models.Activity) error {
	id := gocql.TimeUUID()
	activity.ID = id.String()

	// Actor's own row is born read; only target rows count as unread.
	if err := ar.insertUserRow(activity.ActorID, id, activity, true); err != nil {
		return err
	}

	if activity.TargetID != "" && activity.TargetID != activity.ActorID {
		if err := ar.insertUserRow(activity.TargetID, id, activity, false); err != nil {
			return err
		}
	}

	return ar.session.Query(
		`INSERT INTO activity_team (feed, id, type, actor_id, task_id, target_id, task_title, old_value, new_value, created_at)
		 VALUES ('team', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(activity.Type), activity.ActorID, activity.TaskID, activity.TargetID,
		activity.TaskTitle, activity.OldValue, activity.NewValue, activity.CreatedAt,
	).Exec()
}

func (ar *ActivityRepo) insertUserRow(userID string, id gocql.UUID, activity *models.Activity, isRead bool) error {
	return ar.session.Query(
		`INSERT INTO activity_by_user (user_id, id, type, actor_id, task_id, target_id, task_title, old_value, new_value, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, id, string(activity.Type), activity.ActorID, activity.TaskID, activity.TargetID,
		activity.TaskTitle, activity.OldValue, activity.NewValue, isRead, activity.CreatedAt,
	).Exec()
}

// FeedForUser returns the newest activities on a user's feed.
func (ar *ActivityRepo) FeedForUser(userID string, limit int) ([]models.Activity, error) {
	iter := ar.session.Query(
		`SELECT id, type, actor_id, task_id, target_id, task_title, old_value, new_value, is_read, created_at
		 FROM activity_by_user WHERE user_id = ? LIMIT ?`, userID, limit).Iter()

	var activities []models.Activity
	var a models.Activity
	var id gocql.UUID
	var typ string
	for iter.Scan(&id, &typ, &a.ActorID, &a.TaskID, &a.TargetID, &a.TaskTitle, &a.OldValue, &a.NewValue, &a.IsRead, &a.CreatedAt) {
		a.ID = id.String()
		a.Type = models.ActivityType(typ)
		activities = append(activities, a)
	}
	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: CASS_FEED_READ_FAILED, Description: Failed to read activity feed: %v", err)
		return nil, err
	}
	return activities, nil
}

// TeamFeed returns the newest activities across the whole team.
func (ar *ActivityRepo) TeamFeed(limit int) ([]models.Activity, error) {
	iter := ar.session.Query(
		`SELECT id, type, actor_id, task_id, target_id, task_title, old_value, new_value, created_at
		 FROM activity_team WHERE feed = 'team' LIMIT ?`, limit).Iter()

	var activities []models.Activity
	var a models.Activity
	var id gocql.UUID
	var typ string
	for iter.Scan(&id, &typ, &a.ActorID, &a.TaskID, &a.TargetID, &a.TaskTitle, &a.OldValue, &a.NewValue, &a.CreatedAt) {
		a.ID = id.String()
		a.Type = models.ActivityType(typ)
		a.IsRead = true
		activities = append(activities, a)
	}
	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: CASS_TEAM_FEED_READ_FAILED, Description: Failed to read team feed: %v", err)
		return nil, err
	}
	return activities, nil
}

// UnreadCount counts unread rows on a user's feed. The filter runs inside
// a single partition.
func (ar *ActivityRepo) UnreadCount(userID string) (int, error) {
	var count int
	err := ar.session.Query(
		`SELECT COUNT(*) FROM activity_by_user WHERE user_id = ? AND is_read = false ALLOW FILTERING`,
		userID).Scan(&count)
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_UNREAD_COUNT_FAILED, Description: Failed to count unread activities: %v", err)
		return 0, err
	}
	return count, nil
}

// MarkRead flips one feed row to read. The full clustering key is needed,
// so callers pass the record's created_at alongside its id.
func (ar *ActivityRepo) MarkRead(userID, activityID string, createdAt string) error {
	id, err := gocql.ParseUUID(activityID)
	if err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return err
	}
	return ar.session.Query(
		`UPDATE activity_by_user SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`,
		userID, ts, id).Exec()
}

// MarkAllRead flips every unread row on a user's feed.
func (ar *ActivityRepo) MarkAllRead(userID string) error {
	iter := ar.session.Query(
		`SELECT id, created_at FROM activity_by_user WHERE user_id = ? AND is_read = false ALLOW FILTERING`,
		userID).Iter()

	var id gocql.UUID
	var createdAt time.Time
	for iter.Scan(&id, &createdAt) {
		if err := ar.session.Query(
			`UPDATE activity_by_user SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`,
			userID, createdAt, id).Exec(); err != nil {
			iter.Close()
			return err
		}
	}
	return iter.Close()
}
