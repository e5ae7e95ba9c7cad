package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

const contextSessionKey = "session"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	UserID   int       `json:"user_id"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session returns the caller identity carried by the claims.
func (c Claims) Session() user.Session {
	return user.Session{UserID: c.UserID, Role: c.Role}
}

func GetUserClaims(conf *core.Config, usr user.User) *Claims {
	now := time.Now().UTC()
	return &Claims{
		UserID:   usr.ID,
		Username: usr.Username,
		Role:     usr.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.JWTExpirationDelta)),
		},
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func ParseToken(conf *core.Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(conf.AppName))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// jwtMiddleware authenticates "Authorization: Bearer <token>" and stores the caller's session.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				return errMissingToken
			}
			claims, err := ParseToken(conf, tokenString)
			if err != nil {
				return errInvalidToken.WithInternal(err)
			}
			ctx.Set(contextSessionKey, claims.Session())
			return next(ctx)
		}
	}
}

func getSession(ctx echo.Context) user.Session {
	sess, _ := ctx.Get(contextSessionKey).(user.Session)
	return sess
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.ValidateStruct(lr)
}

type authApi struct {
	conf *core.Config
	svc  *user.Service
}

func registerAuthAPI(g *echo.Group, conf *core.Config, svc *user.Service) {
	api := authApi{conf: conf, svc: svc}
	g.POST("/auth/login", api.login)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}
