package domain

import "context"

type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SkillInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

type SkillRepository interface {
	List(ctx context.Context) ([]Skill, error)
	GetByID(ctx context.Context, id int64) (*Skill, error)
	GetByNames(ctx context.Context, names []string) ([]Skill, error)
	Create(ctx context.Context, skill *Skill) error
	Update(ctx context.Context, skill *Skill) error
	Delete(ctx context.Context, id int64) error
}

type SkillUsecase interface {
	List(ctx context.Context) ([]Skill, error)
	Get(ctx context.Context, id int64) (*Skill, error)
	Create(ctx context.Context, in SkillInput) (*Skill, error)
	Update(ctx context.Context, id int64, in SkillInput) (*Skill, error)
	Delete(ctx context.Context, id int64) error
}
