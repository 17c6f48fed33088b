package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/domain"
	"github.com/huddlekit/huddle/internal/store"
)

type registerRequest struct {
	FullName string `json:"fullName" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

func (a *API) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid field"})
		return
	}
	identity, err := a.Users.Register(req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": identity.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid field"})
		return
	}
	identity, err := a.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			// Same answer for unknown email and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionIdentityKey, string(identity.ID))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (a *API) handleLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentIdentity resolves the cookie session to a registered identity.
func (a *API) currentIdentity(c *gin.Context) (*domain.Identity, bool) {
	sess := sessions.Default(c)
	raw, ok := sess.Get(sessionIdentityKey).(string)
	if !ok || raw == "" {
		return nil, false
	}
	return a.Users.GetByID(domain.IdentityID(raw))
}

func (a *API) handleOnlineUsers(c *gin.Context) {
	online, err := a.Hub.OnlineUsers()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("online users list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}
	c.JSON(http.StatusOK, online)
}

func (a *API) handleListFiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	files, err := a.Files.List(limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("file list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}
	c.JSON(http.StatusOK, files)
}

func (a *API) handleUpload(c *gin.Context) {
	identity, ok := a.currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file"})
		return
	}
	defer file.Close()

	if header.Size > a.Cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	storedName, size, err := a.Blobs.Save(header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("blob save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}

	fd := &domain.FileDescriptor{
		StoredName:          storedName,
		OriginalName:        filepath.Base(header.Filename),
		SizeBytes:           size,
		UploaderID:          identity.ID,
		UploaderDisplayName: identity.DisplayName,
		UploadedAt:          time.Now().Unix(),
	}
	if err := a.Files.Record(fd); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ledger record failed")
		_ = a.Blobs.Remove(storedName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server failure"})
		return
	}

	log.Info().Str("module", "adapters.http").Str("uploader", string(identity.ID)).Str("name", fd.OriginalName).Int64("size", size).Msg("file shared")
	c.JSON(http.StatusCreated, fd)
}

func (a *API) handleDownload(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad file id"})
		return
	}
	fd, ok := a.Files.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(a.Blobs.Path(fd.StoredName), fd.OriginalName)
}
