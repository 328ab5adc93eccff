package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
// Password 非空时同时创建 eleve 账号，此时 Email 必填
type CreateStudentRequest struct {
	Matricule       string `json:"matricule"        binding:"required,max=30"`
	Nom             string `json:"nom"              binding:"required,max=100"`
	Prenom          string `json:"prenom"           binding:"required,max=100"`
	DateNaissance   string `json:"date_naissance"   binding:"omitempty,datetime=2006-01-02"`
	Sexe            string `json:"sexe"             binding:"required,oneof=M F"`
	Adresse         string `json:"adresse"          binding:"omitempty,max=255"`
	Telephone       string `json:"telephone"        binding:"omitempty,max=30"`
	Email           string `json:"email"            binding:"omitempty,email"`
	NomParent       string `json:"nom_parent"       binding:"omitempty,max=200"`
	TelephoneParent string `json:"telephone_parent" binding:"omitempty,max=30"`
	ClasseID        string `json:"classe_id"        binding:"required,uuid"`
	Password        string `json:"password"         binding:"omitempty,min=8,max=64"`
}

// UpdateStudentRequest 更新学生请求（仅更新非空字段）
type UpdateStudentRequest struct {
	Matricule       *string `json:"matricule"        binding:"omitempty,max=30"`
	Nom             *string `json:"nom"              binding:"omitempty,max=100"`
	Prenom          *string `json:"prenom"           binding:"omitempty,max=100"`
	DateNaissance   *string `json:"date_naissance"   binding:"omitempty,datetime=2006-01-02"`
	Sexe            *string `json:"sexe"             binding:"omitempty,oneof=M F"`
	Adresse         *string `json:"adresse"          binding:"omitempty,max=255"`
	Telephone       *string `json:"telephone"        binding:"omitempty,max=30"`
	Email           *string `json:"email"            binding:"omitempty,email"`
	NomParent       *string `json:"nom_parent"       binding:"omitempty,max=200"`
	TelephoneParent *string `json:"telephone_parent" binding:"omitempty,max=30"`
	ClasseID        *string `json:"classe_id"        binding:"omitempty,uuid"`
}

// StudentFilterRequest 学生筛选参数
type StudentFilterRequest struct {
	PaginationRequest
	ClasseID string `form:"classe_id" binding:"omitempty,uuid"`
	Sexe     string `form:"sexe"      binding:"omitempty,oneof=M F"`
	Q        string `form:"q"         binding:"omitempty,max=50"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID              string `json:"id"`
	Matricule       string `json:"matricule"`
	Nom             string `json:"nom"`
	Prenom          string `json:"prenom"`
	DateNaissance   string `json:"date_naissance,omitempty"`
	Sexe            string `json:"sexe"`
	Adresse         string `json:"adresse"`
	Telephone       string `json:"telephone"`
	Email           string `json:"email"`
	NomParent       string `json:"nom_parent"`
	TelephoneParent string `json:"telephone_parent"`
	ClasseID        string `json:"classe_id"`
	Classe          string `json:"classe,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
