// Package api provides the REST API server for mess-o-midi
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"github.com/caseymeehan/mess-o-midi/pkg/logging"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/caseymeehan/mess-o-midi/pkg/music"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Version is reported by the health check
var Version = "1.0.0"

// @title Mess o Midi API
// @version 1.0
// @description API for generating basslines and chord progressions as MIDI files
// @host localhost:5001
// @BasePath /api

// GenerateRequest is the optional JSON body of a generate call
type GenerateRequest struct {
	Filename string  `json:"filename"`
	Scale    []int   `json:"scale"`
	Rhythm   []int   `json:"rhythm"`
	Seed     *uint64 `json:"seed"`
	Contour  string  `json:"contour"`
}

// GenerateResponse reports the written file or the failure
type GenerateResponse struct {
	Success  bool    `json:"success"`
	Filepath string  `json:"filepath,omitempty"`
	Filename string  `json:"filename,omitempty"`
	Seed     *uint64 `json:"seed,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// GeneratorInfo describes one generation strategy
type GeneratorInfo struct {
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Voices      []string `json:"voices"`
	Endpoint    string   `json:"endpoint"`
}

// Server serves generation and download requests
type Server struct {
	svc *generator.Service
	log *zap.Logger
}

// New creates a server around a generation service
func New(svc *generator.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// StartServer creates the output directory and serves on cfg.Addr()
func StartServer(cfg *config.Config, log *zap.Logger) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	dir, err := cfg.EnsureOutputDir()
	if err != nil {
		return err
	}

	svc := generator.NewService(dir, cfg.Defaults, generator.WithLogger(log))
	log.Info("starting mess-o-midi service",
		zap.String("addr", cfg.Addr()),
		zap.String("output_dir", dir),
		zap.Bool("debug", cfg.Debug),
	)
	return New(svc, log).Router().Run(cfg.Addr())
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(s.log))
	r.Use(gin.CustomRecovery(s.recover))

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/generate/bass", s.handleGenerate(generator.KindBass))
		api.POST("/generate/complex-chords", s.handleGenerate(generator.KindComplexChords))
		api.POST("/generate/simple-chords", s.handleGenerate(generator.KindSimpleChords))
		api.GET("/download/:filename", s.handleDownload)
		api.GET("/generators", listGenerators)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, GenerateResponse{Error: "Endpoint not found"})
	})

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.Error("panic while handling request", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusInternalServerError, GenerateResponse{Error: "Internal server error"})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the service
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Mess o Midi - MIDI Service",
		"version": Version,
	})
}

// listGenerators godoc
// @Summary List generators
// @Description Returns the available generation strategies and their voices
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]GeneratorInfo
// @Router /generators [get]
func listGenerators(c *gin.Context) {
	var out []GeneratorInfo
	for _, g := range generator.All() {
		out = append(out, GeneratorInfo{
			Kind:        string(g.Kind()),
			Description: g.Description(),
			Voices:      g.VoiceNames(),
			Endpoint:    "/api/generate/" + string(g.Kind()),
		})
	}
	c.JSON(http.StatusOK, gin.H{"generators": out})
}

// handleGenerate godoc
// @Summary Generate a MIDI file
// @Description Generates a bassline, complex chords or simple chords and writes a .mid file
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateRequest false "Optional filename, scale, rhythm and seed"
// @Success 200 {object} GenerateResponse
// @Failure 400 {object} GenerateResponse
// @Failure 500 {object} GenerateResponse
// @Router /generate/bass [post]
// @Router /generate/complex-chords [post]
// @Router /generate/simple-chords [post]
func (s *Server) handleGenerate(kind generator.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, GenerateResponse{Error: "Invalid JSON body: " + err.Error()})
			return
		}

		res, err := s.svc.Generate(kind, generator.Request{
			Filename: req.Filename,
			Scale:    req.Scale,
			Rhythm:   req.Rhythm,
			Seed:     req.Seed,
			Contour:  generator.Contour(req.Contour),
		})
		if err != nil {
			s.log.Error("generation failed", zap.String("kind", string(kind)), zap.Error(err))
			_ = c.Error(err)
			c.JSON(statusFor(err), GenerateResponse{Error: err.Error()})
			return
		}

		seed := res.Seed
		c.JSON(http.StatusOK, GenerateResponse{
			Success:  true,
			Filepath: res.Path,
			Filename: res.Filename,
			Seed:     &seed,
		})
	}
}

// handleDownload godoc
// @Summary Download a generated MIDI file
// @Tags download
// @Produce audio/midi
// @Param filename path string true "File name returned by a generate call"
// @Success 200 {file} binary
// @Failure 404 {object} GenerateResponse
// @Router /download/{filename} [get]
func (s *Server) handleDownload(c *gin.Context) {
	filename := c.Param("filename")
	path, err := s.svc.Resolve(filename)
	if err != nil {
		// a name that cannot be in the output directory is simply not there
		if errors.Is(err, generator.ErrNotFound) || errors.Is(err, music.ErrInvalidInput) {
			c.JSON(http.StatusNotFound, GenerateResponse{Error: "File not found"})
			return
		}
		c.JSON(statusFor(err), GenerateResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Type", "audio/midi")
	c.FileAttachment(path, filename)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, music.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, midifile.ErrEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generator.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
