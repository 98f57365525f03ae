package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	msgUserAlreadyExists     = "user already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid username or password"
	msgFailedToGenerateToken = "failed to generate token"
	msgUserCreated           = "Account created successfully."
	msgLoggedOut             = "Logged out successfully."
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func checkUserExists(email, username string) (bool, error) {
	var count int64
	err := initializers.DB.Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

func findUserByIdentifier(identifier string) (models.User, error) {
	var user models.User
	result := initializers.DB.Where("email = ? OR username = ?", identifier, identifier).First(&user)
	return user, result.Error
}

// startSession issues a JWT for the user and stores it in the token cookie.
func startSession(ctx *gin.Context, user models.User) (string, error) {
	cfg := initializers.AppConfig
	tokenString, err := utils.GenerateJWT(user, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return "", err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie("token", tokenString, int(cfg.JWTTTL.Seconds()), "/", "", secureCookies(), true)
	return tokenString, nil
}

func secureCookies() bool {
	return strings.HasPrefix(initializers.AppConfig.BaseURL, "https://")
}

// Signup registers a user and logs them straight in.
func Signup(ctx *gin.Context) {
	var signUpData models.SignupData
	if err := ctx.ShouldBind(&signUpData); err != nil {
		sendValidationError(ctx, err)
		return
	}

	exists, err := checkUserExists(signUpData.Email, signUpData.Username)
	if err != nil {
		log.Println("Database error during user check:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if exists {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	user := models.User{
		Username:  signUpData.Username,
		Email:     signUpData.Email,
		FirstName: signUpData.FirstName,
		LastName:  signUpData.LastName,
		Password:  hashedPassword,
		Role:      models.RoleUser,
	}
	if result := initializers.DB.Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
			return
		}
		log.Println("User creation error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	tokenString, err := startSession(ctx, user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated, "token": tokenString, "user": user})
}

// Login accepts a username or email with the password.
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBind(&loginData); err != nil {
		sendValidationError(ctx, err)
		return
	}

	user, err := findUserByIdentifier(loginData.Identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("Database error during login:", err)
		}
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	tokenString, err := startSession(ctx, user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString, "user": user})
}

func Logout(ctx *gin.Context) {
	ctx.SetCookie("token", "", -1, "/", "", secureCookies(), true)
	ctx.SetCookie(orderCookie, "", -1, "/", "", secureCookies(), true)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
}
