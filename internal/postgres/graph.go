package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledyaev/amity/internal/domain"
)

// Graph implements core.SocialGraph over the follows table.
// Friendship is mutual follow.
type Graph struct {
	db *pgxpool.Pool
}

func NewGraph(db *pgxpool.Pool) *Graph {
	return &Graph{db: db}
}

func (g *Graph) FollowersOf(ctx context.Context, id domain.UserID) ([]domain.UserID, error) {
	query := `SELECT follower_id FROM follows WHERE followee_id=$1`
	return g.collect(ctx, query, id, "followersOf")
}

func (g *Graph) FriendsOf(ctx context.Context, id domain.UserID) ([]domain.UserID, error) {
	query := `
		SELECT f.followee_id
		FROM follows f
		JOIN follows r ON r.follower_id = f.followee_id AND r.followee_id = f.follower_id
		WHERE f.follower_id=$1`
	return g.collect(ctx, query, id, "friendsOf")
}

func (g *Graph) collect(ctx context.Context, query string, id domain.UserID, op string) ([]domain.UserID, error) {
	rows, err := g.db.Query(ctx, query, string(id))
	if err != nil {
		return nil, perr(op, err)
	}
	defer rows.Close()

	var out []domain.UserID
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, perr(op, err)
		}
		out = append(out, domain.UserID(u))
	}
	if err := rows.Err(); err != nil {
		return nil, perr(op, err)
	}
	return out, nil
}
