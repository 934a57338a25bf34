package domain

// Guardian 监护人/紧急联系人（对应 guardians 表，随 boarder 删除级联清理）
type Guardian struct {
	GuardianID   string `db:"guardian_id" json:"guardian_id"`             // UUID, PRIMARY KEY
	BoarderID    string `db:"boarder_id" json:"boarder_id"`               // UUID, NOT NULL
	Name         string `db:"name" json:"name"`                           // VARCHAR(100), NOT NULL
	Phone        string `db:"phone" json:"phone,omitempty"`               // VARCHAR(32), nullable
	Relationship string `db:"relationship" json:"relationship,omitempty"` // VARCHAR(50), nullable
}
