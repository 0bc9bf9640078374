package media

import "github.com/rwcarlsen/goexif/exif"

// Display labels that receive value formatting. Every other label is passed
// through as the plain string form of the tag value.
const (
	LabelMake         = "相机品牌"
	LabelModel        = "相机型号"
	LabelLensModel    = "镜头型号"
	LabelExposureTime = "曝光时间"
	LabelAperture     = "光圈值"
	LabelFocalLength  = "焦距"
	LabelISO          = "ISO感光度"
	LabelDateTaken    = "原始拍摄时间"
)

// TagTable maps EXIF field names, as decoded by goexif, to display labels.
type TagTable map[exif.FieldName]string

// Label returns the display label for name. The second value is false for
// tags the table does not know; callers drop those silently.
func (t TagTable) Label(name exif.FieldName) (string, bool) {
	label, ok := t[name]
	return label, ok
}

// DefaultTagTable is the label table used by the gallery front end.
var DefaultTagTable = TagTable{
	exif.Make:                       LabelMake,
	exif.Model:                      LabelModel,
	exif.Software:                   "软件",
	exif.DateTime:                   "拍摄时间",
	exif.Artist:                     "摄影师",
	exif.Copyright:                  "版权信息",
	exif.PixelXDimension:            "图片宽度",
	exif.PixelYDimension:            "图片高度",
	exif.Orientation:                "方向",
	exif.XResolution:                "X分辨率",
	exif.YResolution:                "Y分辨率",
	exif.ResolutionUnit:             "分辨率单位",
	exif.YCbCrPositioning:           "YCbCr定位",
	exif.ExifIFDPointer:             "EXIF偏移",
	exif.ExifVersion:                "EXIF版本",
	exif.FlashpixVersion:            "FlashPix版本",
	exif.ColorSpace:                 "色彩空间",
	exif.ComponentsConfiguration:    "组件配置",
	exif.CompressedBitsPerPixel:     "压缩位/像素",
	exif.UserComment:                "用户注释",
	exif.DateTimeOriginal:           LabelDateTaken,
	exif.DateTimeDigitized:          "数字化时间",
	exif.SubSecTime:                 "子秒时间",
	exif.SubSecTimeOriginal:         "原始子秒时间",
	exif.SubSecTimeDigitized:        "数字化子秒时间",
	exif.ExposureTime:               LabelExposureTime,
	exif.FNumber:                    LabelAperture,
	exif.ExposureProgram:            "曝光程序",
	exif.SpectralSensitivity:        "光谱灵敏度",
	exif.ISOSpeedRatings:            LabelISO,
	exif.OECF:                       "光电转换函数",
	exif.ShutterSpeedValue:          "快门速度值",
	exif.ApertureValue:              LabelAperture,
	exif.BrightnessValue:            "亮度值",
	exif.ExposureBiasValue:          "曝光偏差值",
	exif.MaxApertureValue:           "最大光圈值",
	exif.SubjectDistance:            "主体距离",
	exif.MeteringMode:               "测光模式",
	exif.LightSource:                "光源",
	exif.Flash:                      "闪光灯",
	exif.FocalLength:                LabelFocalLength,
	exif.SubjectArea:                "主体区域",
	exif.MakerNote:                  "制造商注释",
	exif.RelatedSoundFile:           "相关音频文件",
	exif.InteroperabilityIFDPointer: "互操作性IFD指针",
	exif.FlashEnergy:                "闪光灯能量",
	exif.SpatialFrequencyResponse:   "空间频率响应",
	exif.FocalPlaneXResolution:      "焦平面X分辨率",
	exif.FocalPlaneYResolution:      "焦平面Y分辨率",
	exif.FocalPlaneResolutionUnit:   "焦平面分辨率单位",
	exif.SubjectLocation:            "主体位置",
	exif.ExposureIndex:              "曝光指数",
	exif.SensingMethod:              "感光方法",
	exif.FileSource:                 "文件源",
	exif.SceneType:                  "场景类型",
	exif.CFAPattern:                 "CFA模式",
	exif.CustomRendered:             "自定义渲染",
	exif.ExposureMode:               "曝光模式",
	exif.WhiteBalance:               "白平衡",
	exif.DigitalZoomRatio:           "数字变焦比",
	exif.FocalLengthIn35mmFilm:      "35mm胶片等效焦距",
	exif.SceneCaptureType:           "场景捕获类型",
	exif.GainControl:                "增益控制",
	exif.Contrast:                   "对比度",
	exif.Saturation:                 "饱和度",
	exif.Sharpness:                  "锐度",
	exif.DeviceSettingDescription:   "设备设置描述",
	exif.SubjectDistanceRange:       "主体距离范围",
	exif.ImageUniqueID:              "图片唯一ID",
	exif.LensMake:                   "镜头品牌",
	exif.LensModel:                  LabelLensModel,
	CameraOwnerName:                 "相机所有者姓名",
	BodySerialNumber:                "机身序列号",
	LensSpecification:               "镜头规格",
	LensSerialNumber:                "镜头序列号",
}
