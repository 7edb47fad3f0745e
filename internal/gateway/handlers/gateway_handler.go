package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"live_stream_service/internal/video/domain"
	"live_stream_service/pkg/database"
	"live_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// GatewayHandler serves HLS bytes straight from the processed bucket and
// proxies upload/status calls to the upload service.
type GatewayHandler struct {
	MinioClient      database.MinIOClientRepo
	UploadServiceURL string
}

// NewGatewayHandler create gateway handler
func NewGatewayHandler(minioClient database.MinIOClientRepo, uploadServiceURL string) *GatewayHandler {
	return &GatewayHandler{
		MinioClient:      minioClient,
		UploadServiceURL: uploadServiceURL,
	}
}

// GetHLSFile resolves (videoId, fileName) to a processed-store object and
// streams its bytes. A missing key is a 404; any other storage failure is a
// 502, never a success with partial bytes.
func (h *GatewayHandler) GetHLSFile(c *fiber.Ctx) error {
	videoID := c.Params("videoId")
	fileName := c.Params("fileName")
	objectKey := videoID + "/" + fileName

	info, err := h.MinioClient.StatObject(c.UserContext(), domain.ProcessedBucket, objectKey)
	if err != nil {
		if database.IsObjectNotFound(err) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("HLS file not found: %s", objectKey),
			})
		}
		logger.Log.Errorf(fmt.Sprintf("objectKey[%s] stat failed", objectKey), err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to fetch HLS file from storage",
		})
	}

	obj, err := h.MinioClient.GetObject(c.UserContext(), domain.ProcessedBucket, objectKey)
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("objectKey[%s] get failed", objectKey), err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to fetch HLS file from storage",
		})
	}
	defer obj.Close()

	// read fully before answering so a mid-stream storage error can still
	// become a 502 instead of a truncated 200
	content, err := io.ReadAll(obj)
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("objectKey[%s] read failed", objectKey), err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to fetch HLS file from storage",
		})
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeFor(fileName)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(content)
}

// ProxyUpload forwards the multipart upload to the upload service.
func (h *GatewayHandler) ProxyUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": `no file provided, use multipart/form-data with field name "file"`,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to open uploaded file"})
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileHeader.Filename))
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}
	part, err := writer.CreatePart(header)
	if err == nil {
		_, err = io.Copy(part, file)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		logger.Log.Errorf("build proxy upload body failed", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to proxy upload to upload service",
		})
	}

	agent := fiber.Post(h.UploadServiceURL + "/upload")
	agent.Body(body.Bytes()).ContentType(writer.FormDataContentType())
	return h.relay(c, agent, "failed to proxy upload to upload service")
}

// GetVideoStatus proxies the single-video status lookup.
func (h *GatewayHandler) GetVideoStatus(c *fiber.Ctx) error {
	agent := fiber.Get(h.UploadServiceURL + "/videos/" + c.Params("id"))
	return h.relay(c, agent, "failed to fetch video status from upload service")
}

// GetVideos proxies the full video list.
func (h *GatewayHandler) GetVideos(c *fiber.Ctx) error {
	agent := fiber.Get(h.UploadServiceURL + "/videos")
	return h.relay(c, agent, "failed to fetch videos from upload service")
}

// relay executes the outbound request and passes the upstream response
// through; transport failure becomes the uniform 502 envelope.
func (h *GatewayHandler) relay(c *fiber.Ctx, agent *fiber.Agent, failMsg string) error {
	if err := agent.Parse(); err != nil {
		logger.Log.Errorf(failMsg, err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": failMsg})
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	agent.SetResponse(resp)

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		logger.Log.Errorf(failMsg, errs[0])
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": failMsg})
	}

	contentType := string(resp.Header.ContentType())
	if contentType == "" {
		contentType = fiber.MIMEApplicationJSON
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(code).Send(respBody)
}
