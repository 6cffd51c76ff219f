package handlers

import (
	"log"
	"net/http"

	"github.com/farmconnect-dev/farmconnect/internal/services"
	"github.com/gin-gonic/gin"
)

func GetWeather(weather *services.WeatherService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		city := ctx.Query("city")
		lat := ctx.Query("lat")
		lon := ctx.Query("lon")

		info, err := weather.Current(ctx.Request.Context(), city, lat, lon)

		if err != nil {
			log.Printf("Weather lookup failed: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Weather data unavailable"})
			return
		}

		ctx.JSON(http.StatusOK, info)
	}
}
