package utils

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"opine/models"

	"github.com/redis/go-redis/v9"
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(dsn string) *redis.Client {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		log.Fatalf("Failed to parse Redis DSN: %v", err)
	}

	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err = client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}

	return client
}

// StoreSession saves a session in Redis and indexes it under its user so
// DeleteAllUserSessions can find it later.
func StoreSession(client *redis.Client, session models.Session, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionMap := map[string]any{
		"user_id":       strconv.Itoa(session.UserID),
		"created_at":    session.CreatedAt,
		"expires_at":    session.ExpiresAt,
		"last_activity": session.LastActivity,
		"csrf_token":    session.CSRFToken,
		"user_agent":    session.UserAgent,
		"ip_address":    session.IPAddress,
	}

	key := "session:" + session.SessionToken
	if err := client.HSet(ctx, key, sessionMap).Err(); err != nil {
		return err
	}

	if err := client.Expire(ctx, key, ttl).Err(); err != nil {
		return err
	}

	return client.SAdd(ctx, "user_sessions:"+strconv.Itoa(session.UserID), key).Err()
}

// GetSession retrieves session details from Redis
func GetSession(client *redis.Client, sessionToken string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "session:" + sessionToken

	data, err := client.HGetAll(ctx, key).Result()
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("session not found")
	}

	userID, err := strconv.Atoi(data["user_id"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session user id: %w", err)
	}

	session := &models.Session{
		SessionToken: sessionToken,
		UserID:       userID,
		CreatedAt:    data["created_at"],
		ExpiresAt:    data["expires_at"],
		LastActivity: data["last_activity"],
		CSRFToken:    data["csrf_token"],
		UserAgent:    data["user_agent"],
		IPAddress:    data["ip_address"],
	}

	return session, nil
}

// DeleteSession removes a single session and its reference in the user index
func DeleteSession(client *redis.Client, sessionToken string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "session:" + sessionToken

	userID, err := client.HGet(ctx, key, "user_id").Result()
	if err != nil {
		return err
	}

	if err := client.SRem(ctx, "user_sessions:"+userID, key).Err(); err != nil {
		return err
	}

	return client.Del(ctx, key).Err()
}

// DeleteAllUserSessions removes every session belonging to a user. Called
// when the account is deleted, so no stale session can keep acting as the
// removed user.
func DeleteAllUserSessions(client *redis.Client, userID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexKey := "user_sessions:" + strconv.Itoa(userID)

	sessionKeys, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	if len(sessionKeys) > 0 {
		if err := client.Del(ctx, sessionKeys...).Err(); err != nil {
			return err
		}
	}

	return client.Del(ctx, indexKey).Err()
}

// UpdateLastActivity updates the last activity timestamp of a session
func UpdateLastActivity(client *redis.Client, sessionToken string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.HSet(ctx, "session:"+sessionToken, "last_activity", time.Now().Format(time.RFC3339)).Err()
}

func GetUserIDFromST(client *redis.Client, sessionToken string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uID, err := client.HGet(ctx, "session:"+sessionToken, "user_id").Result()
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(uID)
}

func GetCSRFFromST(client *redis.Client, sessionToken string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	csrfToken, err := client.HGet(ctx, "session:"+sessionToken, "csrf_token").Result()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve csrf token: %w", err)
	}

	return csrfToken, nil
}

// StoreResetToken remembers that a password reset code was verified for
// username. The token goes into the client's cookie; the redirect to the
// change-password form presents it back.
func StoreResetToken(client *redis.Client, token, username string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Set(ctx, "pwreset:"+token, username, ttl).Err()
}

// GetResetToken returns the username a verified reset token belongs to, or
// "" when the token is unknown or expired.
func GetResetToken(client *redis.Client, token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	username, err := client.Get(ctx, "pwreset:"+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	return username, err
}

func DeleteResetToken(client *redis.Client, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Del(ctx, "pwreset:"+token).Err()
}
