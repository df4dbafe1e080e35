package server

import (
	"bmapp/cache"
	"bmapp/config"
	"bmapp/core/auth"
	"bmapp/core/catalog"
	"bmapp/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	catalog   *catalog.Service
	ingestor  *catalog.Ingestor
	userRepo  repository.UserRepository
	favorites cache.FavoriteStore
	tokens    *auth.TokenManager
	cfg       *config.Config

	// uploadSemaphore 用于控制并发上传
	uploadSemaphore chan struct{}
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	catalogSvc *catalog.Service,
	ingestor *catalog.Ingestor,
	userRepo repository.UserRepository,
	favorites cache.FavoriteStore,
	tokens *auth.TokenManager,
	cfg *config.Config,
) *APIHandler {
	maxConcurrent := cfg.UploadMaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &APIHandler{
		catalog:         catalogSvc,
		ingestor:        ingestor,
		userRepo:        userRepo,
		favorites:       favorites,
		tokens:          tokens,
		cfg:             cfg,
		uploadSemaphore: make(chan struct{}, maxConcurrent),
	}
}
