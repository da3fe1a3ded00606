package repository

import (
	"context"
	"time"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// RoomRepository 房间仓储接口
type RoomRepository interface {
	BaseRepository
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	UpdateByRoomID(ctx context.Context, roomID string, updates map[string]interface{}) error
	FindByRoomID(ctx context.Context, roomID string) (*models.Room, error)
	FindByStatus(ctx context.Context, status string, p *Pagination) ([]*models.Room, error)
	List(ctx context.Context, p *Pagination) ([]*models.Room, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// roomRepo 房间仓储实现
type roomRepo struct {
	*BaseRepo
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建房间
func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Update 更新房间
func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// UpdateByRoomID 根据房间ID更新
func (r *roomRepo) UpdateByRoomID(ctx context.Context, roomID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(updates).Error
}

// FindByRoomID 根据房间ID查找（带成员）
func (r *roomRepo) FindByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at asc, id asc")
		}).
		Where("room_id = ?", roomID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByStatus 按状态查找房间（分页）
func (r *roomRepo) FindByStatus(ctx context.Context, status string, p *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room

	r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("status = ?", status).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("status = ?", status).
		Order("created_at desc").
		Scopes(Paginate(p)).
		Find(&rooms).Error

	return rooms, err
}

// List 列出所有房间（分页）
func (r *roomRepo) List(ctx context.Context, p *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room

	r.db.WithContext(ctx).
		Model(&models.Room{}).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Preload("Members").
		Order("created_at desc").
		Scopes(Paginate(p)).
		Find(&rooms).Error

	return rooms, err
}

// CountByStatus 统计指定状态的房间数
func (r *roomRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *roomRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// RoomMemberRepository 房间成员仓储接口
type RoomMemberRepository interface {
	BaseRepository
	Create(ctx context.Context, member *models.RoomMember) error
	Delete(ctx context.Context, roomID, playerID string) error
	Find(ctx context.Context, roomID, playerID string) (*models.RoomMember, error)
	FindByRoom(ctx context.Context, roomID string) ([]*models.RoomMember, error)
	UpdateReady(ctx context.Context, roomID, playerID, isReady string) error
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}

// roomMemberRepo 房间成员仓储实现
type roomMemberRepo struct {
	*BaseRepo
}

// NewRoomMemberRepository 创建房间成员仓储
func NewRoomMemberRepository(db *gorm.DB) RoomMemberRepository {
	return &roomMemberRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 添加成员
func (r *roomMemberRepo) Create(ctx context.Context, member *models.RoomMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// Delete 移除成员（物理删除，成员资格不保留历史）
func (r *roomMemberRepo) Delete(ctx context.Context, roomID, playerID string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Delete(&models.RoomMember{}).Error
}

// Find 查找指定成员
func (r *roomMemberRepo) Find(ctx context.Context, roomID, playerID string) (*models.RoomMember, error) {
	var member models.RoomMember
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByRoom 查找房间全部成员（按加入顺序）
func (r *roomMemberRepo) FindByRoom(ctx context.Context, roomID string) ([]*models.RoomMember, error) {
	var members []*models.RoomMember
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at asc, id asc").
		Find(&members).Error
	return members, err
}

// UpdateReady 更新准备状态
func (r *roomMemberRepo) UpdateReady(ctx context.Context, roomID, playerID, isReady string) error {
	return r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Update("is_ready", isReady).Error
}

// CountByRoom 统计房间成员数
func (r *roomMemberRepo) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *roomMemberRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomMemberRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
