// Package cleanup は未検証アカウントの自動削除ジョブを提供する。
// 保持期間（デフォルト30日）を超えても検証されなかったアカウントを
// 日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// UnverifiedDeleter は未検証アカウントの削除に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UnverifiedDeleter interface {
	DeleteUnverifiedBefore(ctx context.Context, retentionDays int) (int64, error)
}

// CleanupJob は保持期間を超過した未検証アカウントの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	repo          UnverifiedDeleter
	logger        *slog.Logger
	RetentionDays int // 未検証アカウントの保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は30日。
func NewCleanupJob(repo UnverifiedDeleter, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:          repo,
		logger:        logger,
		RetentionDays: 30,
	}
}

// Run は保持期間を超過した未検証アカウントを削除する。
// created_atがRetentionDays日前より古く、かつverified=falseの
// ユーザーをDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.repo.DeleteUnverifiedBefore(ctx, j.RetentionDays)
	if err != nil {
		j.logger.Error("未検証アカウントのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("未検証アカウントのクリーンアップに失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("未検証アカウントのクリーンアップが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
