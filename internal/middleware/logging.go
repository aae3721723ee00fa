package middleware

import (
    "context"
    "log/slog"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestID assigns every request a uuid unless the client supplied one.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: uuid.NewString,
    })
}

// RequestLogger writes one structured line per request to the default slog
// logger.  Server errors log at error level, client errors at warn.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogStatus:    true,
        LogMethod:    true,
        LogURI:       true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []slog.Attr{
                slog.String("method", v.Method),
                slog.String("uri", v.URI),
                slog.Int("status", v.Status),
                slog.Duration("latency", v.Latency),
                slog.String("remote_ip", v.RemoteIP),
                slog.String("request_id", v.RequestID),
            }
            if uid, ok := UserID(c); ok {
                attrs = append(attrs, slog.String("user_id", uid))
            }
            level := slog.LevelInfo
            switch {
            case v.Error != nil || v.Status >= 500:
                level = slog.LevelError
                if v.Error != nil {
                    attrs = append(attrs, slog.String("error", v.Error.Error()))
                }
            case v.Status >= 400:
                level = slog.LevelWarn
            }
            slog.LogAttrs(context.Background(), level, "request", attrs...)
            return nil
        },
    })
}
